package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrModelNotFound - модель известна, но не скачана на диск.
var ErrModelNotFound = errors.New("модель не найдена на диске")

// voskSizeMap приводит запрошенный размер к реально доступному размеру Vosk.
var voskSizeMap = map[string]string{
	"tiny":   "small",
	"base":   "small",
	"small":  "small",
	"medium": "medium",
	// Большие модели Vosk недоступны для скачивания, используем medium.
	"large": "medium",
}

// Manager отвечает за расположение моделей на диске.
// Скачивание моделей - забота внешних инструментов, не менеджера.
type Manager struct {
	modelsDir string
}

// NewManager создаёт менеджер моделей.
// Модели хранятся в директории models/ рядом с бинарником.
func NewManager() (*Manager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("не удалось определить путь к бинарнику: %w", err)
	}

	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось разрешить симлинки: %w", err)
	}

	return NewManagerAt(filepath.Join(filepath.Dir(execPath), "models"))
}

// NewManagerAt создаёт менеджер моделей с явной директорией.
func NewManagerAt(dir string) (*Manager, error) {
	for _, sub := range []string{"whisper", "vosk"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию %s: %w", sub, err)
		}
	}
	return &Manager{modelsDir: dir}, nil
}

// ModelsDir возвращает путь к директории моделей.
func (m *Manager) ModelsDir() string {
	return m.modelsDir
}

// Path возвращает полный путь к модели.
func (m *Manager) Path(info ModelInfo) string {
	switch info.Engine {
	case EngineWhisper:
		return filepath.Join(m.modelsDir, "whisper", info.Filename)
	case EngineVosk:
		return filepath.Join(m.modelsDir, "vosk", info.Filename)
	default:
		return filepath.Join(m.modelsDir, info.Filename)
	}
}

// IsDownloaded проверяет, есть ли модель на диске.
func (m *Manager) IsDownloaded(info ModelInfo) bool {
	stat, err := os.Stat(m.Path(info))
	if err != nil {
		return false
	}

	// Vosk модель - распакованная директория
	if info.IsDir {
		return stat.IsDir()
	}

	// Whisper модель - непустой файл
	return stat.Size() > 0
}

// Resolve подбирает модель реестра под движок, размер и язык.
// Не проверяет наличие на диске - это делает ResolvePath.
func (m *Manager) Resolve(engine Engine, size, language string) (ModelInfo, error) {
	switch engine {
	case EngineWhisper:
		// Whisper модели мультиязычные, язык не участвует в выборе.
		for _, info := range GetModelsByEngine(EngineWhisper) {
			if info.Size == size {
				return info, nil
			}
		}
		return ModelInfo{}, fmt.Errorf("нет whisper модели размера %q", size)

	case EngineVosk:
		mapped, ok := voskSizeMap[size]
		if !ok {
			mapped = "small"
		}
		for _, info := range GetModelsByEngine(EngineVosk) {
			if info.Size == mapped && info.Language == language {
				return info, nil
			}
		}
		return ModelInfo{}, fmt.Errorf("нет vosk модели для языка %q размера %q", language, size)

	default:
		return ModelInfo{}, fmt.Errorf("неизвестный движок: %s", engine)
	}
}

// ResolvePath возвращает путь к скачанной модели.
// Отсутствующая модель - ошибка загрузки, а не падение процесса.
func (m *Manager) ResolvePath(engine Engine, size, language string) (string, error) {
	info, err := m.Resolve(engine, size, language)
	if err != nil {
		return "", err
	}
	if !m.IsDownloaded(info) {
		return "", fmt.Errorf("%w: %s (%s)", ErrModelNotFound, info.Name, m.Path(info))
	}
	return m.Path(info), nil
}
