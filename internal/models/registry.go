// Package models управляет хранилищем моделей распознавания речи.
package models

// Engine тип движка распознавания.
type Engine string

const (
	EngineWhisper Engine = "whisper"
	EngineVosk    Engine = "vosk"
)

// ModelInfo информация о модели.
type ModelInfo struct {
	ID       string // Уникальный идентификатор: "whisper-base-q5"
	Engine   Engine // Движок: whisper или vosk
	Size     string // Условный размер: tiny/base/small/medium
	Language string // Язык модели ("" - мультиязычная)
	Name     string // Отображаемое имя
	Filename string // Имя файла (whisper) или директории (vosk)
	IsDir    bool   // Модель распакована в директорию
}

// Registry все известные модели.
var Registry = []ModelInfo{
	// Whisper - квантизированные модели (мультиязычные)
	{
		ID:       "whisper-tiny-q5",
		Engine:   EngineWhisper,
		Size:     "tiny",
		Name:     "Tiny Q5",
		Filename: "ggml-tiny-q5_1.bin",
	},
	{
		ID:       "whisper-base-q5",
		Engine:   EngineWhisper,
		Size:     "base",
		Name:     "Base Q5",
		Filename: "ggml-base-q5_1.bin",
	},
	{
		ID:       "whisper-small-q5",
		Engine:   EngineWhisper,
		Size:     "small",
		Name:     "Small Q5",
		Filename: "ggml-small-q5_1.bin",
	},
	{
		ID:       "whisper-medium-q5",
		Engine:   EngineWhisper,
		Size:     "medium",
		Name:     "Medium Q5",
		Filename: "ggml-medium-q5_0.bin",
	},
	// Vosk - английский
	{
		ID:       "vosk-en-small",
		Engine:   EngineVosk,
		Size:     "small",
		Language: "en-us",
		Name:     "English Small",
		Filename: "vosk-model-small-en-us-0.15",
		IsDir:    true,
	},
	{
		ID:       "vosk-en",
		Engine:   EngineVosk,
		Size:     "medium",
		Language: "en-us",
		Name:     "English",
		Filename: "vosk-model-en-us-0.22",
		IsDir:    true,
	},
	// Vosk - русский
	{
		ID:       "vosk-ru-small",
		Engine:   EngineVosk,
		Size:     "small",
		Language: "ru",
		Name:     "Russian Small",
		Filename: "vosk-model-small-ru-0.22",
		IsDir:    true,
	},
	{
		ID:       "vosk-ru",
		Engine:   EngineVosk,
		Size:     "medium",
		Language: "ru",
		Name:     "Russian",
		Filename: "vosk-model-ru-0.42",
		IsDir:    true,
	},
}

// GetModel возвращает модель по ID.
func GetModel(id string) (ModelInfo, bool) {
	for _, m := range Registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GetModelsByEngine возвращает модели для указанного движка.
func GetModelsByEngine(engine Engine) []ModelInfo {
	var result []ModelInfo
	for _, m := range Registry {
		if m.Engine == engine {
			result = append(result, m)
		}
	}
	return result
}
