package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio реализует Device через библиотеку portaudio.
// Initialize/Terminate парные: библиотека сама считает вложенность.
type PortAudio struct {
	mu sync.Mutex
}

// NewPortAudio создаёт устройство захвата на базе portaudio.
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open открывает входной поток микрофона.
func (p *PortAudio) Open(deviceIndex int) (Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации portaudio: %w", err)
	}

	buf := make([]int16, FramesPerBuffer)

	var stream *portaudio.Stream
	var err error

	if deviceIndex < 0 {
		stream, err = portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, buf)
	} else {
		stream, err = p.openIndexed(deviceIndex, buf)
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("ошибка открытия аудиопотока: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("ошибка запуска аудиопотока: %w", err)
	}

	return &paStream{parent: p, stream: stream, buf: buf}, nil
}

// openIndexed открывает поток конкретного устройства по индексу.
func (p *PortAudio) openIndexed(deviceIndex int, buf []int16) (*portaudio.Stream, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceIndex >= len(devices) {
		return nil, fmt.Errorf("устройство %d не найдено", deviceIndex)
	}

	params := portaudio.LowLatencyParameters(devices[deviceIndex], nil)
	params.Input.Channels = Channels
	params.SampleRate = SampleRate
	params.FramesPerBuffer = FramesPerBuffer

	return portaudio.OpenStream(params, buf)
}

// paStream - открытый поток portaudio.
type paStream struct {
	mu     sync.Mutex
	parent *PortAudio
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

// Read читает один chunk и конвертирует int16 -> PCM16 little-endian.
func (s *paStream) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("аудиопоток закрыт")
	}

	if err := s.stream.Read(); err != nil {
		return nil, err
	}

	chunk := make([]byte, len(s.buf)*2)
	for i, sample := range s.buf {
		binary.LittleEndian.PutUint16(chunk[i*2:], uint16(sample))
	}
	return chunk, nil
}

// Close останавливает и закрывает поток.
func (s *paStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.stream.Stop()
	err := s.stream.Close()

	s.parent.mu.Lock()
	portaudio.Terminate()
	s.parent.mu.Unlock()

	return err
}
