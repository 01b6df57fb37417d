//go:build !linux

package platform

import (
	"fmt"
	"runtime"
)

func newX11Driver() (Driver, error) {
	return nil, fmt.Errorf("x11 backend is not supported on %s", runtime.GOOS)
}
