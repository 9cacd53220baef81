package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "httpc",
	Short: "curl-like HTTP client speaking raw sockets",
	Long: `httpc issues HTTP and HTTPS requests directly over TCP and TLS
sockets, follows redirects, optionally caches responses by URL, and
dispatches batches of requests concurrently.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(ExitUsageError)
		}
		os.Exit(ExitError)
	}
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// usageError marks malformed input (bad URL, bad data, missing
// arguments) so Execute can exit with the usage code. Per-request
// transport failures never reach this path; they only print
// diagnostics and leave the exit code at zero.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
