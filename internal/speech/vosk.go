package speech

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskRecognizer реализует потоковый Recognizer через Vosk.
// Границы фраз определяет встроенный endpointer движка.
type VoskRecognizer struct {
	mu         sync.Mutex
	modelPath  string
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
	sampleRate float64
}

// voskResult структура для парсинга JSON результата от Vosk.
type voskResult struct {
	Text string `json:"text"`
}

// NewVosk создаёт VoskRecognizer. Модель не загружается до Load.
func NewVosk(modelPath string) *VoskRecognizer {
	return &VoskRecognizer{
		modelPath: modelPath,
		// 16000 Hz - стандартная частота для speech recognition
		sampleRate: 16000.0,
	}
}

// Name возвращает название движка.
func (v *VoskRecognizer) Name() string {
	return "vosk"
}

// Load загружает модель Vosk. Повторный вызов - no-op.
func (v *VoskRecognizer) Load() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		return nil
	}

	// Проверяем существование директории модели
	if _, err := os.Stat(v.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("модель Vosk не найдена: %s", v.modelPath)
	}

	model, err := vosk.NewModel(v.modelPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки модели Vosk: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, v.sampleRate)
	if err != nil {
		model.Free()
		return fmt.Errorf("ошибка создания распознавателя Vosk: %w", err)
	}

	v.model = model
	v.recognizer = rec
	return nil
}

// Feed скармливает chunk движку. Возвращает текст фразы,
// когда endpointer зафиксировал её границу, иначе пустую строку.
func (v *VoskRecognizer) Feed(chunk []byte) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer == nil {
		return "", fmt.Errorf("модель Vosk не загружена")
	}

	if v.recognizer.AcceptWaveform(chunk) == 0 {
		return "", nil
	}

	return parseVoskResult(v.recognizer.Result())
}

// Finalize скармливает остаток буфера и возвращает финальный результат.
func (v *VoskRecognizer) Finalize(chunks [][]byte) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer == nil {
		return "", fmt.Errorf("модель Vosk не загружена")
	}

	for _, chunk := range chunks {
		v.recognizer.AcceptWaveform(chunk)
	}

	resultJSON := v.recognizer.FinalResult()

	// Сбрасываем распознаватель для следующего использования
	v.recognizer.Reset()

	return parseVoskResult(resultJSON)
}

func parseVoskResult(resultJSON string) (string, error) {
	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// Close освобождает ресурсы.
func (v *VoskRecognizer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}

	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
