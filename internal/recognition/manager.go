package recognition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"vocalinux/internal/audio"
	"vocalinux/internal/commands"
	"vocalinux/internal/speech"
)

// joinTimeout - максимальное ожидание завершения capture goroutine.
const joinTimeout = 2 * time.Second

// Provider поставляет распознаватель с ленивой загрузкой модели.
// Реализуется speech.Factory.
type Provider interface {
	Ensure() (speech.Recognizer, error)
	Ready() bool
	Config() speech.Config
	Reconfigure(cfg speech.Config) error
	Close()
}

// Manager - оркестратор сессии распознавания.
//
// Владеет аудиопотоком, буфером, распознавателем и подписчиками.
// Все публичные методы безопасны для конкурентного вызова.
type Manager struct {
	provider    Provider
	device      audio.Device
	deviceIndex int
	buffer      *audio.Buffer
	proc        *commands.Processor
	dispatcher  *Dispatcher
	reconn      *Reconnector
	joinWait    time.Duration

	mu       sync.Mutex
	state    State
	starting bool
	stream   audio.Stream
	done     chan struct{}
	finished chan struct{}

	// fed - сколько chunk-ов из буфера уже подано потоковому движку
	// через Feed. Stop не подаёт их в Finalize повторно.
	fed int
}

// NewManager создаёт менеджер распознавания.
// Модель не загружается - загрузка откладывается до первого Start.
func NewManager(provider Provider, device audio.Device, deviceIndex int) *Manager {
	return &Manager{
		provider:    provider,
		device:      device,
		deviceIndex: deviceIndex,
		buffer:      audio.NewBuffer(),
		proc:        commands.NewProcessor(),
		dispatcher:  &Dispatcher{},
		reconn:      NewReconnector(device, deviceIndex),
		joinWait:    joinTimeout,
		state:       StateIdle,
	}
}

// OnText регистрирует подписчика на распознанный текст.
func (m *Manager) OnText(fn TextFunc) { m.dispatcher.OnText(fn) }

// OnState регистрирует подписчика на смену состояния.
func (m *Manager) OnState(fn StateFunc) { m.dispatcher.OnState(fn) }

// OnAction регистрирует подписчика на команды-действия.
func (m *Manager) OnAction(fn ActionFunc) { m.dispatcher.OnAction(fn) }

// State возвращает текущее состояние сессии.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ModelReady проверяет, загружена ли модель.
func (m *Manager) ModelReady() bool { return m.provider.Ready() }

// Engine возвращает текущий движок распознавания.
func (m *Manager) Engine() speech.Engine { return m.provider.Config().Engine }

// ModelSize возвращает текущий размер модели.
func (m *Manager) ModelSize() string { return m.provider.Config().ModelSize }

// Language возвращает текущий язык распознавания.
func (m *Manager) Language() string { return m.provider.Config().Language }

// SetBufferLimit устанавливает лимит аудио буфера.
// Возвращает фактически применённое значение.
func (m *Manager) SetBufferLimit(n int) int { return m.buffer.SetLimit(n) }

// BufferStats возвращает диагностику аудио буфера.
func (m *Manager) BufferStats() audio.Stats { return m.buffer.Stats() }

// Start запускает распознавание: загружает модель (при первом запуске),
// открывает микрофон и запускает capture goroutine.
//
// Запуск из StateError сбрасывает счётчик переподключений.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.starting || m.state == StateListening || m.state == StateProcessing {
		m.mu.Unlock()
		return errors.New("распознавание уже запущено")
	}
	// Флаг держит загрузку модели и открытие микрофона под одним guard:
	// конкурентный Start не должен открыть вторую сессию захвата.
	m.starting = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	rec, err := m.provider.Ensure()
	if err != nil {
		m.setState(StateError)
		return fmt.Errorf("ошибка загрузки модели: %w", err)
	}

	stream, err := m.device.Open(m.deviceIndex)
	if err != nil {
		m.setState(StateError)
		return fmt.Errorf("ошибка открытия микрофона: %w", err)
	}

	m.reconn.Reset()

	done := make(chan struct{})
	finished := make(chan struct{})

	m.mu.Lock()
	m.stream = stream
	m.done = done
	m.finished = finished
	m.fed = 0
	m.mu.Unlock()

	m.setState(StateListening)
	log.Printf("Распознавание запущено: %s/%s", rec.Name(), m.provider.Config().ModelSize)

	go m.captureLoop(stream, rec, done, finished)
	return nil
}

// Stop останавливает захват, выполняет финальное распознавание хвоста
// буфера и переводит сессию в StateIdle. Повторный вызов - no-op.
//
// Из StateError сессию выводит только Start: Stop лишь освобождает
// ресурсы, не меняя состояние.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.done == nil {
		m.mu.Unlock()
		return nil
	}
	done, finished, stream := m.done, m.finished, m.stream
	m.done, m.finished, m.stream = nil, nil, nil
	m.mu.Unlock()

	close(done)
	select {
	case <-finished:
	case <-time.After(m.joinWait):
		log.Printf("Capture goroutine не завершилась за %v", m.joinWait)
	}

	if stream != nil {
		stream.Close()
	}

	m.mu.Lock()
	inError := m.state == StateError
	fed := m.fed
	m.fed = 0
	m.mu.Unlock()

	if inError {
		m.buffer.Drain()
		return nil
	}

	m.setState(StateProcessing)

	// Начало буфера потоковый движок уже получил через Feed;
	// в Finalize уходит только несданный хвост.
	chunks := m.buffer.Drain()
	if fed >= len(chunks) {
		chunks = nil
	} else {
		chunks = chunks[fed:]
	}

	if (len(chunks) > 0 || fed > 0) && m.provider.Ready() {
		if rec, err := m.provider.Ensure(); err == nil {
			text, err := rec.Finalize(chunks)
			if err != nil {
				log.Printf("Ошибка финального распознавания: %v", err)
			} else if text != "" {
				m.emit(text)
			}
		}
	}

	m.setState(StateIdle)
	log.Printf("Распознавание остановлено")
	return nil
}

// Reconfigure меняет движок/модель/язык. Отклоняется во время
// активного распознавания; новая модель загрузится при следующем Start.
func (m *Manager) Reconfigure(cfg speech.Config) error {
	m.mu.Lock()
	active := m.state == StateListening || m.state == StateProcessing
	m.mu.Unlock()

	if active {
		return errors.New("нельзя менять конфигурацию во время распознавания")
	}
	return m.provider.Reconfigure(cfg)
}

// Close останавливает сессию и освобождает распознаватель.
func (m *Manager) Close() {
	m.Stop()
	m.provider.Close()
}

// captureLoop читает аудио с микрофона до закрытия done.
//
// Ошибки чтения запускают переподключение; после исчерпания попыток
// сессия переходит в StateError и loop завершается.
func (m *Manager) captureLoop(stream audio.Stream, rec speech.Recognizer, done, finished chan struct{}) {
	defer close(finished)

	streaming := true
	for {
		select {
		case <-done:
			return
		default:
		}

		chunk, err := stream.Read()
		if err != nil || len(chunk) == 0 {
			select {
			case <-done:
				return
			default:
			}

			next, rerr := m.reconn.Reconnect(stream)
			if rerr != nil {
				if m.reconn.Exhausted() {
					log.Printf("Микрофон потерян: %v", rerr)
					m.setState(StateError)
					return
				}
				continue
			}

			m.mu.Lock()
			if m.done == done {
				m.stream = next
			}
			m.mu.Unlock()
			stream = next
			continue
		}

		m.buffer.Append(chunk)

		if !streaming {
			continue
		}

		text, ferr := rec.Feed(chunk)
		if errors.Is(ferr, speech.ErrNotStreaming) {
			streaming = false
			continue
		}

		// Chunk ушёл в движок - Stop не должен подать его повторно
		m.markFed()

		if ferr != nil {
			log.Printf("Ошибка распознавания: %v", ferr)
			continue
		}
		if text != "" {
			m.handleUtterance(text)
		}
	}
}

// handleUtterance обрабатывает границу фразы потокового движка.
func (m *Manager) handleUtterance(raw string) {
	m.setState(StateProcessing)

	// Эти chunk-и уже распознаны потоковым движком
	m.buffer.Drain()
	m.mu.Lock()
	m.fed = 0
	m.mu.Unlock()

	m.emit(raw)
	m.setState(StateListening)
}

// markFed учитывает chunk, поданный потоковому движку.
func (m *Manager) markFed() {
	m.mu.Lock()
	m.fed++
	m.mu.Unlock()
}

// emit пропускает текст через процессор команд и доставляет результат.
func (m *Manager) emit(raw string) {
	text, actions := m.proc.Process(raw)
	if text != "" {
		m.dispatcher.DispatchText(text)
	}
	for _, action := range actions {
		m.dispatcher.DispatchAction(action)
	}
}

// setState меняет состояние и уведомляет подписчиков при изменении.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	m.dispatcher.DispatchState(s)
}
