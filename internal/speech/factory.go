package speech

import (
	"fmt"
	"sync"

	"vocalinux/internal/models"
)

// whisperSizeMap приводит запрошенный размер к практичному размеру whisper:
// большие модели слишком медленные для диктовки на CPU.
var whisperSizeMap = map[string]string{
	"tiny":   "tiny",
	"small":  "base",
	"medium": "small",
	"large":  "medium",
}

// Factory владеет текущим распознавателем и загружает его лениво.
//
// Модель не загружается ни при создании фабрики, ни при Reconfigure -
// только при первом Ensure. Повторные и конкурентные Ensure вторую
// загрузку не запускают.
type Factory struct {
	mu      sync.Mutex
	manager *models.Manager
	cfg     Config
	current Recognizer
	loaded  bool

	// build подменяется в тестах
	build func(Config) (Recognizer, error)
}

// NewFactory создаёт фабрику распознавателей. Никакого I/O не происходит.
func NewFactory(manager *models.Manager, cfg Config) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Factory{
		manager: manager,
		cfg:     cfg,
	}
	f.build = f.create
	return f, nil
}

// create создаёт распознаватель для текущей конфигурации.
func (f *Factory) create(cfg Config) (Recognizer, error) {
	switch cfg.Engine {
	case EngineVosk:
		path, err := f.manager.ResolvePath(models.EngineVosk, cfg.ModelSize, cfg.Language)
		if err != nil {
			return nil, err
		}
		return NewVosk(path), nil

	case EngineWhisper:
		size, ok := whisperSizeMap[cfg.ModelSize]
		if !ok {
			size = "base"
		}
		path, err := f.manager.ResolvePath(models.EngineWhisper, size, cfg.Language)
		if err != nil {
			return nil, err
		}
		return NewWhisper(path, cfg.Language), nil

	default:
		return nil, fmt.Errorf("неизвестный движок: %s", cfg.Engine)
	}
}

// Ensure возвращает загруженный распознаватель, загружая модель при
// первом обращении. Конкурентные вызовы ждут одной загрузки.
func (f *Factory) Ensure() (Recognizer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return f.current, nil
	}

	rec, err := f.build(f.cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания распознавателя: %w", err)
	}

	if err := rec.Load(); err != nil {
		rec.Close()
		return nil, fmt.Errorf("ошибка загрузки модели: %w", err)
	}

	f.current = rec
	f.loaded = true
	return rec, nil
}

// Ready проверяет, загружена ли модель.
func (f *Factory) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Config возвращает текущую конфигурацию.
func (f *Factory) Config() Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

// Reconfigure меняет конфигурацию и инвалидирует загруженную модель.
// Сама загрузка не запускается - она произойдёт при следующем Ensure.
func (f *Factory) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	old := f.current
	f.cfg = cfg
	f.current = nil
	f.loaded = false
	f.mu.Unlock()

	// Закрываем старый распознаватель в фоне
	if old != nil {
		go old.Close()
	}
	return nil
}

// Close закрывает текущий распознаватель.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil {
		f.current.Close()
		f.current = nil
	}
	f.loaded = false
}
