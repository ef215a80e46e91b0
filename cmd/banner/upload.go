package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mikequentel/banner/internal/banner"
	"github.com/mikequentel/banner/internal/config"
	"github.com/mikequentel/banner/internal/history"
)

var (
	uploadDryRun    bool
	uploadNoHistory bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload an image as the profile banner",
	Long: `Upload a local image as the account's profile banner.

The image path defaults to BANNER_PATH. Nothing is retried: any failure
is reported and the command exits non-zero.

Examples:
  banner upload                      # Upload BANNER_PATH
  banner upload data/final_plot.png  # Upload a specific file
  banner upload --dry-run            # Check credentials and file without uploading`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Check credentials and image without contacting the API")
	uploadCmd.Flags().BoolVar(&uploadNoHistory, "no-history", false, "Do not record the attempt in the history database")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(args) == 1 {
		cfg.BannerPath = args[0]
	}

	if err := cfg.ValidateForUpload(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	ucfg := banner.Config{
		Auth:   newAuthenticator(cfg),
		Logger: slog.Default(),
	}

	out := cmd.OutOrStdout()

	if uploadDryRun {
		res, err := banner.New(ucfg).Plan(cfg.Credentials(), cfg.BannerPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "=== DRY RUN - Not uploading ===")
		fmt.Fprintf(out, "Image: %s\n", res.Path)
		fmt.Fprintf(out, "Size: %d bytes\n", res.SizeBytes)
		fmt.Fprintf(out, "Type: %s\n", res.ContentType)
		return nil
	}

	if !uploadNoHistory && cfg.ValidateForHistory() == nil {
		store, err := openHistory(ctx, cfg.HistoryPath)
		if err != nil {
			slog.Warn("upload history disabled", "error", err)
		} else {
			defer store.Close()
			ucfg.History = store
		}
	}

	res, err := banner.New(ucfg).Upload(ctx, cfg.Credentials(), cfg.BannerPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Banner updated from %s (%d bytes, %s, sha256 %s)\n",
		res.Path, res.SizeBytes, res.ContentType, res.SHA256)
	return nil
}

func openHistory(ctx context.Context, path string) (*history.Store, error) {
	store, err := history.NewStore(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("connect to history database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}
