// Vocalinux - голосовой ввод текста для Linux.
//
// Работает в фоне: SIGUSR1 переключает распознавание, SIGINT/SIGTERM
// завершают приложение. Распознанный текст вводится в активное поле.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"vocalinux/internal/audio"
	"vocalinux/internal/config"
	"vocalinux/internal/input"
	"vocalinux/internal/models"
	"vocalinux/internal/notify"
	"vocalinux/internal/recognition"
	"vocalinux/internal/speech"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	engine := flag.String("engine", "", "движок распознавания (vosk, whisper)")
	modelSize := flag.String("model-size", "", "размер модели (tiny, small, medium, large)")
	language := flag.String("language", "", "язык распознавания (en-us, ru)")
	device := flag.Int("device", -1, "индекс аудио устройства (-1 - по умолчанию)")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Printf("Vocalinux %s запускается...", Version)

	cfg := config.New()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.SetEngine(*engine)
		case "model-size":
			cfg.SetModelSize(*modelSize)
		case "language":
			cfg.SetLanguage(*language)
		case "device":
			cfg.SetDeviceIndex(*device)
		}
	})

	if err := run(cfg); err != nil {
		log.Printf("Ошибка: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	mgr, err := models.NewManager()
	if err != nil {
		return err
	}

	factory, err := speech.NewFactory(mgr, speech.Config{
		Engine:    speech.Engine(cfg.Engine()),
		ModelSize: cfg.ModelSize(),
		Language:  cfg.Language(),
	})
	if err != nil {
		return err
	}

	manager := recognition.NewManager(factory, audio.NewPortAudio(), cfg.DeviceIndex())
	manager.SetBufferLimit(cfg.BufferLimit())

	notifier := notify.New(cfg.NotificationsEnabled())

	injector, err := input.New()
	if err != nil {
		log.Printf("Ввод текста недоступен: %v", err)
	}

	manager.OnState(func(s recognition.State) {
		log.Printf("Состояние: %s", s)
		switch s {
		case recognition.StateListening:
			notifier.Listening()
		case recognition.StateError:
			notifier.Error("распознавание остановлено из-за ошибки")
		}
	})

	manager.OnText(func(text string) {
		log.Printf("Распознано: %q", text)
		notifier.Success(text)
		if injector == nil {
			return
		}
		// Ввод в отдельной goroutine, чтобы не блокировать захват аудио
		go func() {
			if err := injector.Type(text + " "); err != nil {
				log.Printf("Ошибка ввода текста: %v", err)
			}
		}()
	})

	manager.OnAction(func(action string) {
		if injector == nil {
			return
		}
		go func() {
			if err := injector.Perform(action); err != nil {
				log.Printf("Ошибка действия %q: %v", action, err)
			}
		}()
	})

	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Готово. Переключение распознавания: kill -USR1 %d", os.Getpid())

	for {
		select {
		case <-toggle:
			if manager.State() == recognition.StateListening {
				manager.Stop()
			} else if err := manager.Start(); err != nil {
				log.Printf("Ошибка запуска распознавания: %v", err)
				notifier.Error(err.Error())
			}

		case <-quit:
			log.Printf("Завершение...")
			manager.Close()
			return nil
		}
	}
}
