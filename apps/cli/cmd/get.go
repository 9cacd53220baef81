package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rawnet/httpc/packages/dispatch"
	"github.com/rawnet/httpc/packages/executor"
)

// WatchDebounceDelay coalesces rapid successive writes to the URL file.
const WatchDebounceDelay = 300 * time.Millisecond

var (
	urlFileFlag string
	watchFlag   bool
)

var getCmd = &cobra.Command{
	Use:   "get URL...",
	Short: "Execute HTTP GET requests",
	Long: `Execute one or more HTTP GET requests over raw sockets, following
up to 5 redirects per request.

Examples:
  # Single request
  httpc get http://example.com/

  # Headers only, written to a file
  httpc get -I -o headers.txt https://example.com

  # Cached, repeated batch from a URL file
  httpc get -c -n 3 -u urls.txt

  # Concurrent batch with pacing and stats
  httpc get --rate 20 --stats -u urls.txt`,
	Args: cobra.ArbitraryArgs,
	RunE: getCommand,
}

func init() {
	addCommonFlags(getCmd)
	getCmd.Flags().StringVarP(&urlFileFlag, "url-file", "u", "", "Load newline-separated URLs from a file")
	getCmd.Flags().BoolVar(&watchFlag, "watch", false, "Re-run the batch whenever the URL file changes (requires -u)")
}

func getCommand(cmd *cobra.Command, args []string) error {
	urls, err := collectURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return usageError{errors.New("at least one URL is required")}
	}

	if watchFlag {
		if urlFileFlag == "" {
			return usageError{errors.New("--watch requires --url-file")}
		}
		return watchLoop(cmd, args)
	}

	return runBatch(cmd, executor.MethodGet, urls, "")
}

// collectURLs merges positional URLs with the -u file, positionals
// first.
func collectURLs(args []string) ([]string, error) {
	urls := append([]string(nil), args...)
	if urlFileFlag != "" {
		fromFile, err := dispatch.LoadURLs(urlFileFlag)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	return urls, nil
}

// watchLoop runs the batch, then re-runs it on every write to the URL
// file until interrupted. The file is re-read before each run so edits
// take effect.
func watchLoop(cmd *cobra.Command, args []string) error {
	runOnce := func() {
		urls, err := collectURLs(args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			return
		}
		if err := runBatch(cmd, executor.MethodGet, urls, ""); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}
	runOnce()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors replace files rather than write
	// them in place.
	if err := watcher.Add(filepath.Dir(urlFileFlag)); err != nil {
		return fmt.Errorf("watch %s: %w", urlFileFlag, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes... (press Ctrl+C to stop)\n", urlFileFlag)

	var debounce *time.Timer
	target := filepath.Clean(urlFileFlag)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nURL file changed, re-running batch\n")
				runOnce()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: watch error: %v\n", err)
		case <-cmd.Context().Done():
			return nil
		}
	}
}
