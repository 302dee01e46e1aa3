// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// configData структура для сериализации.
type configData struct {
	Engine        string `json:"engine"`
	ModelSize     string `json:"model_size"`
	Language      string `json:"language"`
	BufferLimit   int    `json:"buffer_limit,omitempty"`
	DeviceIndex   *int   `json:"device_index,omitempty"`
	Notifications bool   `json:"notifications"`
}

// Config хранит настройки приложения.
type Config struct {
	mu            sync.RWMutex
	engine        string
	modelSize     string
	language      string
	bufferLimit   int
	deviceIndex   int
	notifications bool
	configPath    string
}

// New создаёт конфигурацию, загружая из файла рядом с бинарником
// или с настройками по умолчанию.
func New() *Config {
	var path string

	// Определяем путь к файлу конфигурации рядом с бинарником
	execPath, err := os.Executable()
	if err == nil {
		// Резолвим симлинки
		execPath, err = filepath.EvalSymlinks(execPath)
		if err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}

	return NewAt(path)
}

// NewAt создаёт конфигурацию с явным путём к файлу.
func NewAt(path string) *Config {
	c := &Config{
		engine:        "vosk",
		modelSize:     "small",
		language:      "en-us",
		bufferLimit:   5000,
		deviceIndex:   -1, // устройство по умолчанию
		notifications: true,
		configPath:    path,
	}

	c.load()
	return c
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	var cfg configData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}

	if cfg.Engine != "" {
		c.engine = cfg.Engine
	}
	if cfg.ModelSize != "" {
		c.modelSize = cfg.ModelSize
	}
	if cfg.Language != "" {
		c.language = cfg.Language
	}
	if cfg.BufferLimit > 0 {
		c.bufferLimit = cfg.BufferLimit
	}
	if cfg.DeviceIndex != nil {
		c.deviceIndex = *cfg.DeviceIndex
	}
	c.notifications = cfg.Notifications
}

// save сохраняет конфигурацию в файл.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	idx := c.deviceIndex
	cfg := configData{
		Engine:        c.engine,
		ModelSize:     c.modelSize,
		Language:      c.language,
		BufferLimit:   c.bufferLimit,
		DeviceIndex:   &idx,
		Notifications: c.notifications,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return
	}

	os.WriteFile(c.configPath, data, 0644)
}

// Engine возвращает движок распознавания.
func (c *Config) Engine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// SetEngine устанавливает движок распознавания.
func (c *Config) SetEngine(engine string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = engine
	c.save()
}

// ModelSize возвращает размер модели.
func (c *Config) ModelSize() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modelSize
}

// SetModelSize устанавливает размер модели.
func (c *Config) SetModelSize(size string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelSize = size
	c.save()
}

// Language возвращает язык распознавания.
func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// SetLanguage устанавливает язык распознавания.
func (c *Config) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
	c.save()
}

// BufferLimit возвращает лимит аудио буфера.
func (c *Config) BufferLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bufferLimit
}

// SetBufferLimit устанавливает лимит аудио буфера.
func (c *Config) SetBufferLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bufferLimit = n
	c.save()
}

// DeviceIndex возвращает индекс аудио устройства (-1 - по умолчанию).
func (c *Config) DeviceIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceIndex
}

// SetDeviceIndex устанавливает индекс аудио устройства.
func (c *Config) SetDeviceIndex(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceIndex = idx
	c.save()
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// SetNotifications включает/выключает уведомления.
func (c *Config) SetNotifications(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = enabled
	c.save()
}
