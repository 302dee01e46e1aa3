// Package input предоставляет ввод текста и клавиатурных действий
// в активное поле.
package input

// Injector вводит текст и выполняет клавиатурные действия.
type Injector interface {
	// Type вводит текст в текущее активное поле.
	Type(text string) error

	// Perform выполняет действие голосовой команды (undo, copy, ...).
	Perform(action string) error
}

// actionKeys - последовательности клавиш для действий голосовых команд.
var actionKeys = map[string][]string{
	"delete_last":      {"ctrl+shift+Left", "Delete"},
	"undo":             {"ctrl+z"},
	"redo":             {"ctrl+shift+z"},
	"select_all":       {"ctrl+a"},
	"select_line":      {"Home", "shift+End"},
	"select_word":      {"ctrl+shift+Left"},
	"select_paragraph": {"ctrl+shift+Up"},
	"cut":              {"ctrl+x"},
	"copy":             {"ctrl+c"},
	"paste":            {"ctrl+v"},
}

// New создаёт платформо-специфичный Injector.
func New() (Injector, error) {
	return newInjector()
}
