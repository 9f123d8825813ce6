package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "OPSDESK_TEST_MODE"

// testMode caches the flag; nil until first read.
var testMode atomic.Pointer[bool]

// InTestMode reports whether startup checks such as the API token hash are relaxed.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	RefreshTestMode()
	return *testMode.Load()
}

// RefreshTestMode re-reads OPSDESK_TEST_MODE after the environment changes.
func RefreshTestMode() {
	on := os.Getenv(testModeEnv) == "1"
	testMode.Store(&on)
}
