package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rawnet/httpc/packages/cache"
	"github.com/rawnet/httpc/packages/config"
	"github.com/rawnet/httpc/packages/dispatch"
	"github.com/rawnet/httpc/packages/executor"
	"github.com/rawnet/httpc/packages/history"
	"github.com/rawnet/httpc/packages/logging"
	"github.com/rawnet/httpc/packages/message"
	"github.com/rawnet/httpc/packages/metrics"
	"github.com/rawnet/httpc/packages/output"
	"github.com/rawnet/httpc/packages/transport"
	"github.com/rawnet/httpc/packages/urlparse"
)

// SamplerInterval is how often the resource sampler appends to the
// metrics log while a batch is running.
const SamplerInterval = 5 * time.Second

var (
	headersOnlyFlag   bool
	outputFlag        string
	cacheFlag         bool
	repeatFlag        int
	headerFlags       []string
	verboseFlag       bool
	timeoutFlag       time.Duration
	maxConcurrentFlag int
	rateFlag          float64
	noColorFlag       bool
	statsFlag         bool
	configFlag        string
)

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&headersOnlyFlag, "headers-only", "I", false, "Print only the response header block")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write responses to this file instead of stdout (numbered per run)")
	cmd.Flags().BoolVarP(&cacheFlag, "cache", "c", false, "Enable response caching by URL")
	cmd.Flags().IntVarP(&repeatFlag, "repeat", "n", 1, "Repeat the whole batch this many times")
	cmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra request header as key:value (repeatable)")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print a summary line per completed request")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Round-trip timeout (0 waits forever)")
	cmd.Flags().IntVar(&maxConcurrentFlag, "max-concurrent", 0, "Maximum concurrent requests")
	cmd.Flags().Float64Var(&rateFlag, "rate", 0, "Pace request starts at this many per second")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&statsFlag, "stats", false, "Print aggregate latency stats after the batch")
	cmd.Flags().StringVar(&configFlag, "config", "", "Config file (default: search .httpc.yaml)")
}

// parseHeaders turns repeated -H key:value flags into ordered headers.
func parseHeaders(flags []string) ([]message.Header, error) {
	headers := make([]message.Header, 0, len(flags))
	for _, raw := range flags {
		key, value, ok := strings.Cut(raw, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected key:value", raw)
		}
		headers = append(headers, message.Header{Key: key, Value: strings.TrimSpace(value)})
	}
	return headers, nil
}

// runBatch validates input, wires the executor stack from config and
// flags, dispatches every run, and emits results. It returns an error
// only for malformed input or setup failures; per-request failures
// print diagnostics and leave the exit code alone.
func runBatch(cmd *cobra.Command, method string, urls []string, data string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	// Every URL is validated before anything is dispatched; one
	// malformed URL fails the whole invocation up front.
	for _, raw := range urls {
		if _, err := urlparse.Parse(raw); err != nil {
			return usageError{err}
		}
	}

	extraHeaders, err := parseHeaders(headerFlags)
	if err != nil {
		return usageError{err}
	}

	logger := logging.Discard()
	if cfg.LogFile != "" {
		fileLogger, closer, err := logging.New(cfg.LogFile, cfg.LogMaxSize)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = fileLogger
	}

	var collectorOpts []metrics.CollectorOption
	if cfg.MetricsFile != "" {
		metricsFile, err := os.OpenFile(cfg.MetricsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open metrics file: %w", err)
		}
		defer metricsFile.Close()
		collectorOpts = append(collectorOpts, metrics.WithSink(metricsFile))

		sampler := metrics.NewSampler(metricsFile, SamplerInterval)
		sampler.Start()
		defer sampler.Stop()
	}
	collector := metrics.NewCollector(collectorOpts...)

	timeout := cfg.Timeout()
	if cmd.Flags().Changed("timeout") {
		timeout = timeoutFlag
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = message.DefaultUserAgent
	}

	execOpts := []executor.Option{
		executor.WithBuilder(message.NewBuilder(message.WithUserAgent(userAgent))),
		executor.WithLogger(logger),
		executor.WithRecorder(collector),
	}
	if cacheFlag {
		store, err := cache.OpenDir(cfg.CacheDir)
		if err != nil {
			return err
		}
		execOpts = append(execOpts, executor.WithCache(store))
	}
	exec := executor.New(transport.New(transport.WithTimeout(timeout)), execOpts...)

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrentFlag > 0 {
		maxConcurrent = maxConcurrentFlag
	}
	dispatchOpts := []dispatch.Option{dispatch.WithMaxConcurrent(maxConcurrent)}
	if rateFlag > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithRate(rateFlag))
	}
	dispatcher := dispatch.New(exec, dispatchOpts...)

	requests := make([]executor.Request, 0, len(urls))
	for _, raw := range urls {
		requests = append(requests, executor.Request{
			Method:      method,
			URL:         raw,
			Data:        data,
			Headers:     extraHeaders,
			UseCache:    cacheFlag,
			HeadersOnly: headersOnlyFlag,
		})
	}

	formatter := output.NewFormatter(
		output.WithVerbose(verboseFlag),
		output.WithNoColor(noColorFlag || cfg.GetNoColor()),
	)

	results := dispatcher.Dispatch(cmd.Context(), requests, repeatFlag)

	var hist *history.Store
	if cfg.HistoryDB != "" {
		if store, err := history.Open(cfg.HistoryDB); err == nil {
			hist = store
			defer hist.Close()
		} else {
			logger.WithError(err).Warn("history store unavailable")
		}
	}

	fileIndex := 0
	for _, res := range results {
		if res.Err != nil {
			formatter.Error(res.Request.URL, res.Err)
			continue
		}

		if outputFlag != "" {
			if err := output.EmitFile(outputPath(outputFlag, fileIndex), res.Outcome, res.Request.HeadersOnly); err != nil {
				formatter.Error(res.Request.URL, err)
			}
			fileIndex++
		} else {
			if err := output.Emit(cmd.OutOrStdout(), res.Outcome, res.Request.HeadersOnly); err != nil {
				formatter.Error(res.Request.URL, err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		formatter.Summary(res.Outcome)

		if hist != nil {
			if err := hist.Record(res.Outcome); err != nil {
				logger.WithError(err).Warn("history write failed")
			}
		}
	}

	if statsFlag {
		formatter.Stats(collector.Summary())
	}
	return nil
}

// outputPath numbers per-run output files in completion order: the
// first run keeps the given name, subsequent ones get .1, .2, ...
func outputPath(base string, index int) string {
	if index == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, index)
}
