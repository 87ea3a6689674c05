package testutil

import (
	"fmt"
	"os"
	"time"
)

// runHelperProcess executes the helper process behavior and always exits.
func runHelperProcess(config HelperProcessConfig) {
	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	if config.SleepMillis > 0 {
		time.Sleep(time.Duration(config.SleepMillis) * time.Millisecond)
	}

	os.Exit(config.ExitCode)
}
