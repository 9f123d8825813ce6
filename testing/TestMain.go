// Package testing switches the process into test mode when blank-imported
// and points external dependencies at unroutable addresses.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var testEnv = map[string]string{
	"OPSDESK_TEST_MODE": "1",
	"GOTENBERG_URL":     "http://127.0.0.1:0",
	"ORDER_API_URL":     "http://127.0.0.1:0",
}

var setup sync.Once

func applyTestEnv() {
	setup.Do(func() {
		for key, value := range testEnv {
			if key != "OPSDESK_TEST_MODE" && os.Getenv(key) != "" {
				continue
			}
			_ = os.Setenv(key, value)
		}
	})
}

func init() {
	applyTestEnv()
}

func TestMain(m *stdtesting.M) {
	applyTestEnv()
	os.Exit(m.Run())
}
