// Package recognition управляет сессией распознавания речи: запуск и
// остановка захвата аудио, переподключение микрофона, границы фраз и
// доставка результатов подписчикам.
package recognition

// State - состояние сессии распознавания.
type State int

const (
	// StateIdle - распознавание не запущено.
	StateIdle State = iota
	// StateListening - идёт захват аудио с микрофона.
	StateListening
	// StateProcessing - выполняется распознавание накопленного аудио.
	StateProcessing
	// StateError - невосстановимая ошибка (модель, устройство).
	StateError
)

// String возвращает человекочитаемое название состояния.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
