// Package testutil provides test helpers shared by poretally packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// SleepMillis delays the exit, for timeout tests.
	SleepMillis int `json:"sleep_millis"`
}

// Environment variables understood by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
	// EnvHelperProcessRecord names a file that receives the received arguments as JSON.
	EnvHelperProcessRecord = "GO_HELPER_PROCESS_RECORD"
)

// TestHelperProcess turns the test binary into a fake external command when
// GO_WANT_HELPER_PROCESS=1. Arguments after "--" are recorded to the file
// named by GO_HELPER_PROCESS_RECORD. Call it from a test function:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
//
// Without the environment variable it returns immediately.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	config := parseHelperConfig()
	recordArgs(argsAfterDash(os.Args))
	runHelperProcess(config)
}

// FakeCommand is a command line that re-enters the test binary as a helper
// process, together with the environment it needs.
type FakeCommand struct {
	// Command is a shell-quoted command line suitable for shlex splitting.
	Command string
	// Env must be set on the child process.
	Env map[string]string
	// RecordPath receives the child's arguments.
	RecordPath string
}

// NewFakeCommand prepares a FakeCommand that runs testName (a test function
// calling TestHelperProcess) with config.
func NewFakeCommand(t *testing.T, testName string, config HelperProcessConfig) FakeCommand {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("encoding helper config: %v", err)
	}

	record := fmt.Sprintf("%s/helper-args.json", t.TempDir())
	return FakeCommand{
		Command: fmt.Sprintf("'%s' -test.run=^%s$ --", strings.ReplaceAll(testBinary, "'", `'\''`), testName),
		Env: map[string]string{
			EnvWantHelperProcess:   "1",
			EnvHelperProcessConfig: string(configJSON),
			EnvHelperProcessRecord: record,
		},
		RecordPath: record,
	}
}

// RecordedArgs returns the arguments the helper process received.
func (f FakeCommand) RecordedArgs(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.RecordPath)
	if err != nil {
		t.Fatalf("reading recorded args: %v", err)
	}
	var args []string
	if err := json.Unmarshal(data, &args); err != nil {
		t.Fatalf("parsing recorded args: %v", err)
	}
	return args
}

// parseHelperConfig parses HelperProcessConfig from environment variable.
func parseHelperConfig() HelperProcessConfig {
	config := HelperProcessConfig{}
	configJSON := os.Getenv(EnvHelperProcessConfig)
	if configJSON != "" {
		// Ignore parse errors; use defaults on failure
		_ = json.Unmarshal([]byte(configJSON), &config)
	}
	return config
}

func argsAfterDash(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func recordArgs(args []string) {
	path := os.Getenv(EnvHelperProcessRecord)
	if path == "" {
		return
	}
	if args == nil {
		args = []string{}
	}
	data, _ := json.Marshal(args)
	_ = os.WriteFile(path, data, 0o644)
}
