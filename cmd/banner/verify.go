package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikequentel/banner/internal/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the credentials against the API",
	Long:  `Authenticate and show which account the credentials belong to, with its current banner.`,
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForAPI(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	client, err := newAuthenticator(cfg).Authenticate(ctx, cfg.Credentials())
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	acct, err := client.VerifyCredentials(ctx)
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Account: @%s (id %d)\n", acct.ScreenName, acct.ID)
	if acct.ProfileBannerURL != "" {
		fmt.Fprintf(out, "Banner: %s\n", acct.ProfileBannerURL)
	} else {
		fmt.Fprintln(out, "Banner: (none)")
	}
	return nil
}
