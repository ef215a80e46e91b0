package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikequentel/banner/internal/banner"
	"github.com/mikequentel/banner/internal/config"
	"github.com/mikequentel/banner/internal/logging"
	"github.com/mikequentel/banner/internal/model"
	"github.com/mikequentel/banner/internal/xapi"
)

// Exit codes. Anything not listed exits 1.
const (
	exitConfig  = 2
	exitNoImage = 3
	exitRemote  = 4
	exitGeneric = 1
)

var rootCmd = &cobra.Command{
	Use:   "banner",
	Short: "Replace a Twitter/X profile banner",
	Long: `banner uploads a local image as the profile banner of the account
whose OAuth1 user-context credentials are in the environment.`,
	SilenceUsage: true,
}

// apiHTTPClient is the base transport for API calls. Nil uses the default.
var apiHTTPClient *http.Client

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	slog.SetDefault(logging.New(os.Getenv("LOG_LEVEL"), os.Stderr))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrMissingCredentials):
		return exitConfig
	case errors.Is(err, banner.ErrImageNotFound):
		return exitNoImage
	case errors.Is(err, xapi.ErrRemoteRequest):
		return exitRemote
	default:
		return exitGeneric
	}
}

func newAuthenticator(cfg *config.Config) *xapi.OAuth1Authenticator {
	return &xapi.OAuth1Authenticator{
		HTTPClient: apiHTTPClient,
		Timeout:    cfg.Timeout,
	}
}
