package recognition

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// TextFunc получает распознанный текст.
type TextFunc func(text string)

// StateFunc получает новое состояние сессии.
type StateFunc func(state State)

// ActionFunc получает идентификатор голосовой команды-действия.
type ActionFunc func(action string)

// Dispatcher хранит подписчиков и доставляет им события.
//
// Доставка синхронная, в порядке регистрации. Паника подписчика
// перехватывается и логируется, остальные подписчики получают событие.
type Dispatcher struct {
	mu     sync.Mutex
	text   []TextFunc
	state  []StateFunc
	action []ActionFunc
}

// OnText регистрирует подписчика на распознанный текст.
func (d *Dispatcher) OnText(fn TextFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = append(d.text, fn)
}

// OnState регистрирует подписчика на смену состояния.
func (d *Dispatcher) OnState(fn StateFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = append(d.state, fn)
}

// OnAction регистрирует подписчика на команды-действия.
func (d *Dispatcher) OnAction(fn ActionFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.action = append(d.action, fn)
}

// DispatchText доставляет текст всем подписчикам.
func (d *Dispatcher) DispatchText(text string) {
	d.mu.Lock()
	subs := append([]TextFunc(nil), d.text...)
	d.mu.Unlock()

	for _, fn := range subs {
		safeCall("text", func() { fn(text) })
	}
}

// DispatchState доставляет новое состояние всем подписчикам.
func (d *Dispatcher) DispatchState(state State) {
	d.mu.Lock()
	subs := append([]StateFunc(nil), d.state...)
	d.mu.Unlock()

	for _, fn := range subs {
		safeCall("state", func() { fn(state) })
	}
}

// DispatchAction доставляет действие всем подписчикам.
func (d *Dispatcher) DispatchAction(action string) {
	d.mu.Lock()
	subs := append([]ActionFunc(nil), d.action...)
	d.mu.Unlock()

	for _, fn := range subs {
		safeCall("action", func() { fn(action) })
	}
}

// safeCall вызывает подписчика, перехватывая панику.
func safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Паника в callback (%s): %v", kind, r)
		}
	}()
	fn()
}
