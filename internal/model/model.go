package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrMissingCredentials is returned when one or more OAuth1 values are empty.
var ErrMissingCredentials = errors.New("missing credentials")

// Credentials is an OAuth1 user-context credential set.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Missing returns the logical names of the empty values, in a fixed order.
func (c Credentials) Missing() []string {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if c.AccessTokenSecret == "" {
		missing = append(missing, "access token secret")
	}
	return missing
}

func (c Credentials) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// String never prints secret material.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{set: %d/4}", 4-len(c.Missing()))
}

func (c Credentials) GoString() string { return c.String() }

// LogValue keeps secrets out of slog output.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("complete", len(c.Missing()) == 0),
		slog.Int("set", 4-len(c.Missing())),
	)
}

// Image is banner image bytes read from local storage.
type Image struct {
	Path        string
	Data        []byte
	ContentType string
}

// Account is the subset of the authenticated user we report on.
type Account struct {
	ID               int64
	ScreenName       string
	ProfileBannerURL string
}

// --- upload history ---

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type UploadRecord struct {
	ID          int64
	Path        string
	SizeBytes   int64
	SHA256      string
	ContentType string
	Status      string
	Error       string
	CreatedAt   time.Time
}
