package cli

// Exit codes for the poretally CLI
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates any failed command, including a failed workflow run
	ExitFailure = 1

	// ExitInterrupted indicates the run was cancelled by SIGINT or SIGTERM
	ExitInterrupted = 130
)
