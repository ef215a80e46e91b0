package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikequentel/banner/internal/config"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent upload attempts",
	Long:  `List recent banner upload attempts recorded in BANNER_HISTORY_DB, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of attempts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForHistory(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openHistory(ctx, cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list uploads: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No uploads recorded.")
		return nil
	}

	fmt.Fprintln(out, "=== Banner uploads ===")
	fmt.Fprintln(out)
	for _, r := range recs {
		fmt.Fprintf(out, "%s  %-6s  %s  %d bytes  %.12s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Status, r.Path, r.SizeBytes, r.SHA256)
		if r.Error != "" {
			fmt.Fprintf(out, "    %s\n", r.Error)
		}
	}
	return nil
}
