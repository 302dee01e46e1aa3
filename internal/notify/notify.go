// Package notify предоставляет системные уведомления о ходе распознавания.
package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/gen2brain/beeep"
)

const appName = "Vocalinux"

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled bool
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Listening показывает уведомление о начале прослушивания.
func (n *Notifier) Listening() {
	n.notify("Слушаю", "Говорите - текст появится после распознавания")
}

// Processing показывает уведомление об обработке.
func (n *Notifier) Processing() {
	n.notify("Обработка", "Идёт распознавание речи...")
}

// Success показывает уведомление с распознанным текстом.
func (n *Notifier) Success(text string) {
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	n.notify("Распознано", text)
}

// Empty показывает уведомление о пустом результате.
func (n *Notifier) Empty() {
	n.notify("Ничего не распознано", "Попробуйте говорить громче и ближе к микрофону")
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify("Ошибка", msg)
}

// notify отправляет уведомление, если уведомления включены.
func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}

	if title == "" {
		title = appName
	} else {
		title = appName + ": " + title
	}

	if err := beeep.Notify(title, message, ""); err != nil {
		log.Printf("Ошибка отправки уведомления: %v", err)
	}
}
