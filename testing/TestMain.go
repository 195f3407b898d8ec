package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("PANEL_TEST_MODE", "1")
		if os.Getenv("TERMINAL_PUNISHMENT") == "" {
			_ = os.Setenv("TERMINAL_PUNISHMENT", "dismissal")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
