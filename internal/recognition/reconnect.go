package recognition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"vocalinux/internal/audio"
)

const (
	// maxReconnectAttempts - число попыток переподключения до отказа.
	maxReconnectAttempts = 5
	// reconnectBaseDelay - задержка перед первой попыткой.
	reconnectBaseDelay = time.Second
	// reconnectMaxDelay - потолок экспоненциальной задержки.
	reconnectMaxDelay = 10 * time.Second
)

// ErrReconnectExhausted возвращается, когда попытки переподключения исчерпаны.
var ErrReconnectExhausted = errors.New("превышено число попыток переподключения микрофона")

// Reconnector переоткрывает аудиопоток с экспоненциальной задержкой.
//
// Задержка перед попыткой k (с нуля): min(base * 2^k, 10s).
// Успешное переподключение сбрасывает счётчик попыток.
type Reconnector struct {
	mu          sync.Mutex
	device      audio.Device
	deviceIndex int
	attempts    int
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	// sleep подменяется в тестах
	sleep func(time.Duration)
}

// NewReconnector создаёт Reconnector с параметрами по умолчанию.
func NewReconnector(device audio.Device, deviceIndex int) *Reconnector {
	return &Reconnector{
		device:      device,
		deviceIndex: deviceIndex,
		maxAttempts: maxReconnectAttempts,
		baseDelay:   reconnectBaseDelay,
		maxDelay:    reconnectMaxDelay,
		sleep:       time.Sleep,
	}
}

// Reconnect выполняет одну попытку переподключения: закрывает старый поток,
// ждёт задержку и открывает новый с пробным чтением.
//
// За пределами лимита попыток возвращает ErrReconnectExhausted без задержки.
func (r *Reconnector) Reconnect(old audio.Stream) (audio.Stream, error) {
	r.mu.Lock()
	r.attempts++
	attempt := r.attempts
	r.mu.Unlock()

	if attempt > r.maxAttempts {
		return nil, ErrReconnectExhausted
	}

	delay := r.delay(attempt)
	log.Printf("Переподключение микрофона: попытка %d/%d через %v", attempt, r.maxAttempts, delay)

	if old != nil {
		old.Close()
	}
	r.sleep(delay)

	stream, err := r.device.Open(r.deviceIndex)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия устройства: %w", err)
	}

	// Пробное чтение: устройство может открыться, но не отдавать данные.
	chunk, err := stream.Read()
	if err != nil || len(chunk) == 0 {
		stream.Close()
		if err == nil {
			err = errors.New("устройство не отдаёт данные")
		}
		return nil, fmt.Errorf("проверка потока не прошла: %w", err)
	}

	r.mu.Lock()
	r.attempts = 0
	r.mu.Unlock()

	log.Printf("Микрофон переподключён")
	return stream, nil
}

// delay возвращает задержку для попытки attempt (с единицы).
func (r *Reconnector) delay(attempt int) time.Duration {
	d := r.baseDelay << uint(attempt-1)
	if d > r.maxDelay || d <= 0 {
		d = r.maxDelay
	}
	return d
}

// Exhausted проверяет, исчерпаны ли попытки переподключения.
func (r *Reconnector) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts >= r.maxAttempts
}

// Attempts возвращает текущий счётчик попыток.
func (r *Reconnector) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// Reset сбрасывает счётчик попыток.
func (r *Reconnector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = 0
}
