//go:build !linux

package input

import "errors"

func newInjector() (Injector, error) {
	return nil, errors.New("ввод текста поддерживается только на Linux")
}
