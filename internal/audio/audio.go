// Package audio предоставляет доступ к микрофону и буферизацию аудио.
package audio

const (
	// SampleRate - частота дискретизации (требование движков распознавания).
	SampleRate = 16000
	// Channels - количество каналов (mono).
	Channels = 1
	// FramesPerBuffer - размер одного chunk в сэмплах.
	FramesPerBuffer = 1024
	// ChunkBytes - размер одного chunk в байтах (PCM16).
	ChunkBytes = FramesPerBuffer * 2
)

// Stream - открытый аудиопоток устройства.
type Stream interface {
	// Read читает один chunk (PCM16 little-endian).
	// Пустой результат без ошибки означает проблему с устройством.
	Read() ([]byte, error)

	// Close останавливает поток и освобождает устройство.
	Close() error
}

// Device открывает аудиопоток микрофона.
type Device interface {
	// Open открывает поток. deviceIndex < 0 - устройство по умолчанию.
	Open(deviceIndex int) (Stream, error)
}
