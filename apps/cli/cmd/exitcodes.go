package cmd

// Exit codes for the httpc CLI
const (
	// ExitSuccess indicates the batch was dispatched; individual
	// request failures do not change the exit code.
	ExitSuccess = 0

	// ExitError indicates an internal error (log, metrics, or cache
	// setup failed).
	ExitError = 1

	// ExitUsageError indicates malformed input: bad URL, bad POST
	// data, or missing arguments.
	ExitUsageError = 2
)
