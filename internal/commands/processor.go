// Package commands обрабатывает голосовые команды в распознанном тексте:
// пунктуацию ("comma"), действия ("delete that") и форматирование ("capitalize").
package commands

import (
	"regexp"
	"strings"
)

// command - пара "фраза -> значение" с сохранением порядка объявления.
type command struct {
	phrase string
	value  string
}

// Текстовые команды заменяются символами прямо в тексте.
var textCommands = []command{
	// Строки
	{"new paragraph", "\n\n"},
	{"new line", "\n"},
	// Пунктуация
	{"full stop", "."},
	{"period", "."},
	{"comma", ","},
	{"question mark", "?"},
	{"exclamation mark", "!"},
	{"exclamation point", "!"},
	{"semicolon", ";"},
	{"colon", ":"},
	{"dash", "-"},
	{"hyphen", "-"},
	{"underscore", "_"},
	{"single quote", "'"},
	{"quote", "\""},
	{"open parenthesis", "("},
	{"close parenthesis", ")"},
	{"open bracket", "["},
	{"close bracket", "]"},
	{"open brace", "{"},
	{"close brace", "}"},
}

// Пунктуация "прилипает" к предыдущему слову - пробел перед ней убирается.
var sticky = map[string]bool{
	".": true, ",": true, "?": true, "!": true, ";": true, ":": true,
	")": true, "]": true, "}": true,
}

// Команды-действия не печатаются, а передаются обработчику действий.
var actionCommands = []command{
	{"delete that", "delete_last"},
	{"scratch that", "delete_last"},
	{"undo", "undo"},
	{"redo", "redo"},
	{"select all", "select_all"},
	{"select line", "select_line"},
	{"select word", "select_word"},
	{"select paragraph", "select_paragraph"},
	{"cut", "cut"},
	{"copy", "copy"},
	{"paste", "paste"},
}

// Команды форматирования изменяют следующее слово.
var formatCommands = []command{
	{"capitalize", "capitalize_next"},
	{"uppercase", "uppercase_next"},
	{"all caps", "uppercase_next"},
	{"lowercase", "lowercase_next"},
}

// Processor обрабатывает команды в результатах распознавания.
type Processor struct {
	actionRe       *regexp.Regexp
	formatRe       *regexp.Regexp
	textRes        []*regexp.Regexp
	actionByPhrase map[string]string
	formatByPhrase map[string]string
}

// NewProcessor создаёт процессор с предкомпилированными паттернами.
func NewProcessor() *Processor {
	p := &Processor{
		actionByPhrase: make(map[string]string),
		formatByPhrase: make(map[string]string),
	}

	actionPhrases := make([]string, 0, len(actionCommands))
	for _, c := range actionCommands {
		p.actionByPhrase[c.phrase] = c.value
		actionPhrases = append(actionPhrases, phrasePattern(c.phrase))
	}
	p.actionRe = regexp.MustCompile(`(?i)\b(` + strings.Join(actionPhrases, "|") + `)\b`)

	formatPhrases := make([]string, 0, len(formatCommands))
	for _, c := range formatCommands {
		p.formatByPhrase[c.phrase] = c.value
		formatPhrases = append(formatPhrases, phrasePattern(c.phrase))
	}
	// Команда форматирования захватывает следующее слово.
	p.formatRe = regexp.MustCompile(`(?i)\b(` + strings.Join(formatPhrases, "|") + `)(?:\s+(\w+))?`)

	for _, c := range textCommands {
		pattern := `(?i)\b` + phrasePattern(c.phrase) + `\b`
		if sticky[c.value] {
			pattern = `(?i)\s*\b` + phrasePattern(c.phrase) + `\b`
		}
		p.textRes = append(p.textRes, regexp.MustCompile(pattern))
	}

	return p
}

// phrasePattern собирает паттерн фразы, допуская повторные пробелы
// между словами (распознаватели иногда вставляют лишние).
func phrasePattern(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// Process заменяет команды в тексте и извлекает действия.
// Возвращает обработанный текст и список идентификаторов действий
// в порядке их появления.
func (p *Processor) Process(text string) (string, []string) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var actions []string

	// Действия: фраза убирается из текста, идентификатор - в список.
	text = p.actionRe.ReplaceAllStringFunc(text, func(m string) string {
		if action, ok := p.actionByPhrase[normalize(m)]; ok {
			actions = append(actions, action)
		}
		return ""
	})

	// Форматирование: команда применяется к следующему слову.
	text = p.formatRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := p.formatRe.FindStringSubmatch(m)
		format := p.formatByPhrase[normalize(sub[1])]
		word := sub[2]
		if word == "" {
			return ""
		}
		switch format {
		case "capitalize_next":
			return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		case "uppercase_next":
			return strings.ToUpper(word)
		case "lowercase_next":
			return strings.ToLower(word)
		default:
			return word
		}
	})

	// Текстовые команды: фраза заменяется символом.
	for i, c := range textCommands {
		text = p.textRes[i].ReplaceAllString(text, c.value)
	}

	return collapseSpaces(text), actions
}

// normalize приводит фразу команды к ключу таблицы.
func normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// collapseSpaces схлопывает повторные пробелы, не трогая переводы строк.
func collapseSpaces(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}
