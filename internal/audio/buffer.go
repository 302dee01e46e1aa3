package audio

import (
	"sync"

	"github.com/gammazero/deque"
)

const (
	// DefaultBufferLimit - лимит буфера по умолчанию (в chunk-ах).
	DefaultBufferLimit = 5000
	// MinBufferLimit - минимально допустимый лимит.
	MinBufferLimit = 100
	// MaxBufferLimit - максимально допустимый лимит.
	MaxBufferLimit = 20000
)

// Stats - диагностика состояния буфера.
type Stats struct {
	Size           int     `json:"buffer_size"`
	Limit          int     `json:"buffer_limit"`
	MemoryBytes    int64   `json:"memory_usage_bytes"`
	MemoryMB       float64 `json:"memory_usage_mb"`
	FullPercentage float64 `json:"buffer_full_percentage"`
}

// Buffer - ограниченная FIFO очередь аудио chunk-ов.
//
// При достижении лимита удаляется старейшая четверть записей:
// при длительном отставании потребителя теряется начало, не конец.
type Buffer struct {
	mu    sync.Mutex
	q     deque.Deque[[]byte]
	limit int
	bytes int64
}

// NewBuffer создаёт буфер с лимитом по умолчанию.
func NewBuffer() *Buffer {
	return &Buffer{limit: DefaultBufferLimit}
}

// Append добавляет chunk, применяя политику вытеснения.
func (b *Buffer) Append(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.q.PushBack(chunk)
	b.bytes += int64(len(chunk))

	if b.q.Len() >= b.limit {
		b.evict(b.limit / 4)
	}
}

// evict удаляет n старейших записей. Вызывать под мьютексом.
func (b *Buffer) evict(n int) {
	for i := 0; i < n && b.q.Len() > 0; i++ {
		old := b.q.PopFront()
		b.bytes -= int64(len(old))
	}
}

// SetLimit устанавливает лимит, ограничивая его диапазоном [100, 20000].
// Возвращает фактически применённое значение.
func (b *Buffer) SetLimit(n int) int {
	if n < MinBufferLimit {
		n = MinBufferLimit
	}
	if n > MaxBufferLimit {
		n = MaxBufferLimit
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.limit = n
	if b.q.Len() > n {
		b.evict(b.q.Len() - n)
	}
	return n
}

// Limit возвращает текущий лимит.
func (b *Buffer) Limit() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit
}

// Len возвращает текущее количество chunk-ов.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.q.Len()
}

// Drain возвращает все накопленные chunk-и и очищает буфер.
func (b *Buffer) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	chunks := make([][]byte, 0, b.q.Len())
	for b.q.Len() > 0 {
		chunks = append(chunks, b.q.PopFront())
	}
	b.bytes = 0
	return chunks
}

// Stats возвращает диагностику буфера без побочных эффектов.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Size:           b.q.Len(),
		Limit:          b.limit,
		MemoryBytes:    b.bytes,
		MemoryMB:       float64(b.bytes) / (1024 * 1024),
		FullPercentage: float64(b.q.Len()) / float64(b.limit) * 100,
	}
}
