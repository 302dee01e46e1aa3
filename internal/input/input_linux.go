//go:build linux

package input

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type linuxInjector struct {
	useWayland bool
}

func newInjector() (Injector, error) {
	t := &linuxInjector{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
	return t, nil
}

func (t *linuxInjector) Type(text string) error {
	if t.useWayland {
		return exec.Command("wtype", text).Run()
	}
	return exec.Command("xdotool", "type", "--clearmodifiers", "--", text).Run()
}

func (t *linuxInjector) Perform(action string) error {
	chords, ok := actionKeys[action]
	if !ok {
		return fmt.Errorf("неизвестное действие: %q", action)
	}

	for _, chord := range chords {
		if err := t.pressChord(chord); err != nil {
			return fmt.Errorf("ошибка нажатия %q: %w", chord, err)
		}
	}
	return nil
}

// pressChord нажимает комбинацию вида "ctrl+shift+z" или одиночную клавишу.
func (t *linuxInjector) pressChord(chord string) error {
	if !t.useWayland {
		return exec.Command("xdotool", "key", "--clearmodifiers", chord).Run()
	}

	// wtype требует раздельные флаги модификаторов и клавиши
	parts := strings.Split(chord, "+")
	key := parts[len(parts)-1]
	mods := parts[:len(parts)-1]

	args := make([]string, 0, len(mods)*4+2)
	for _, m := range mods {
		args = append(args, "-M", strings.ToLower(m))
	}
	args = append(args, "-k", key)
	for i := len(mods) - 1; i >= 0; i-- {
		args = append(args, "-m", strings.ToLower(mods[i]))
	}
	return exec.Command("wtype", args...).Run()
}
