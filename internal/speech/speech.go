// Package speech предоставляет абстракцию для движков распознавания речи.
package speech

import (
	"errors"
	"fmt"
)

// Engine тип движка распознавания.
type Engine string

const (
	// EngineVosk - потоковый движок Vosk (инкрементальные результаты).
	EngineVosk Engine = "vosk"
	// EngineWhisper - пакетный движок whisper.cpp (распознавание по окончании).
	EngineWhisper Engine = "whisper"
)

// ErrNotStreaming возвращается Feed у пакетных движков.
var ErrNotStreaming = errors.New("движок не поддерживает потоковую подачу аудио")

// Config содержит настройки создания распознавателя.
type Config struct {
	// Engine - тип движка (vosk, whisper).
	Engine Engine

	// ModelSize - условный размер модели (tiny/small/medium/large).
	ModelSize string

	// Language - язык распознавания ("en-us", "ru").
	Language string
}

// Validate проверяет конфигурацию. Ошибка конфигурации - синхронная,
// состояние распознавания она не затрагивает.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineVosk, EngineWhisper:
		return nil
	default:
		return fmt.Errorf("неизвестный движок: %q", c.Engine)
	}
}

// Recognizer - интерфейс движка распознавания речи.
//
// Аудио подаётся chunk-ами PCM16 little-endian, 16kHz, mono.
type Recognizer interface {
	// Load загружает модель. Идемпотентен: повторный вызов - no-op.
	Load() error

	// Feed скармливает один chunk потоковому движку. Непустой результат
	// означает границу фразы. Пакетные движки возвращают ErrNotStreaming.
	Feed(chunk []byte) (string, error)

	// Finalize выполняет финальное распознавание. Передаются только
	// chunk-и, ещё не поданные через Feed: каждый chunk попадает в
	// движок ровно один раз.
	Finalize(chunks [][]byte) (string, error)

	// Close освобождает ресурсы движка.
	Close()

	// Name возвращает название движка (для логирования).
	Name() string
}
