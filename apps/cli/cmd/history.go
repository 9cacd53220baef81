package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rawnet/httpc/packages/config"
	"github.com/rawnet/httpc/packages/history"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent requests",
	RunE:  historyCommand,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of entries to show")
	historyCmd.Flags().StringVar(&configFlag, "config", "", "Config file (default: search .httpc.yaml)")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled (history_db is empty)")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(historyLimitFlag)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no requests recorded yet")
		return nil
	}

	dim := color.New(color.Faint).SprintFunc()
	for _, e := range entries {
		source := ""
		if e.FromCache {
			source = " (cache)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-4s %s -> %d  %dms%s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Method, e.URL, e.Status, e.DurationMS, source, dim(e.ID))
	}
	return nil
}
