package speech

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// MinSamples - минимальное количество сэмплов (200ms при 16kHz).
// Whisper требует минимум 100ms, добавляем запас.
const MinSamples = 3200

// WhisperRecognizer реализует пакетный Recognizer через whisper.cpp.
// Аудио накапливается снаружи, вся работа происходит в Finalize.
type WhisperRecognizer struct {
	mu        sync.Mutex
	modelPath string
	language  string
	model     whisper.Model
}

// NewWhisper создаёт WhisperRecognizer. Модель не загружается до Load.
func NewWhisper(modelPath, language string) *WhisperRecognizer {
	return &WhisperRecognizer{
		modelPath: modelPath,
		language:  language,
	}
}

// Name возвращает название движка.
func (w *WhisperRecognizer) Name() string {
	return "whisper"
}

// Load загружает модель whisper.cpp. Повторный вызов - no-op.
func (w *WhisperRecognizer) Load() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		return nil
	}

	model, err := whisper.New(w.modelPath)
	if err != nil {
		return err
	}

	w.model = model
	return nil
}

// Feed не поддерживается: whisper распознаёт только целиком.
func (w *WhisperRecognizer) Feed(chunk []byte) (string, error) {
	return "", ErrNotStreaming
}

// Finalize распознаёт накопленное аудио за один проход.
func (w *WhisperRecognizer) Finalize(chunks [][]byte) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", fmt.Errorf("модель Whisper не загружена")
	}

	samples := pcmToFloat32(chunks)
	if len(samples) == 0 {
		return "", nil
	}

	// Добавляем тишину если запись слишком короткая
	if len(samples) < MinSamples {
		padding := make([]float32, MinSamples-len(samples))
		samples = append(samples, padding...)
	}

	ctx, err := w.model.NewContext()
	if err != nil {
		return "", err
	}

	// Отключаем перевод - только транскрипция
	ctx.SetTranslate(false)

	if lang := whisperLang(w.language); lang != "" {
		ctx.SetLanguage(lang)
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", err
	}

	// Собираем результат из сегментов
	var result strings.Builder
	for {
		segment, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		result.WriteString(segment.Text)
	}

	return strings.TrimSpace(result.String()), nil
}

// Close освобождает ресурсы.
func (w *WhisperRecognizer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
}

// pcmToFloat32 конвертирует PCM16 little-endian в float32 [-1, 1].
func pcmToFloat32(chunks [][]byte) []float32 {
	var total int
	for _, chunk := range chunks {
		total += len(chunk) / 2
	}

	samples := make([]float32, 0, total)
	for _, chunk := range chunks {
		for i := 0; i+1 < len(chunk); i += 2 {
			val := int16(binary.LittleEndian.Uint16(chunk[i:]))
			samples = append(samples, float32(val)/32768.0)
		}
	}
	return samples
}

// whisperLang приводит код языка к формату whisper: "en-us" -> "en".
// Для "auto" включается автодетект внутри движка.
func whisperLang(lang string) string {
	if lang == "" {
		return ""
	}
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i]
	}
	return lang
}
