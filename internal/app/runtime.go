package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv, when truthy, makes the binaries exit before touching
// Postgres, Redis or the network.
const TestModeEnv = "ODYSSEY_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
})

// InTestMode reports whether runtime side effects should be skipped.
func InTestMode() bool {
	return testMode()
}
