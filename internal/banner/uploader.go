// Package banner replaces an account's profile banner with a local image.
package banner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikequentel/banner/internal/model"
	"github.com/mikequentel/banner/internal/xapi"
)

// Recorder stores the outcome of each upload attempt.
type Recorder interface {
	Record(ctx context.Context, rec model.UploadRecord) error
}

// Config holds the uploader's collaborators.
type Config struct {
	Auth    xapi.Authenticator
	History Recorder     // optional
	Logger  *slog.Logger // optional, defaults to slog.Default()
}

// Uploader runs authenticate then upload. It keeps no state between calls.
type Uploader struct {
	auth    xapi.Authenticator
	history Recorder
	log     *slog.Logger
}

// Result describes a completed upload.
type Result struct {
	Path        string
	SizeBytes   int64
	SHA256      string
	ContentType string
	Duration    time.Duration
}

// New creates a new uploader.
func New(cfg Config) *Uploader {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		auth:    cfg.Auth,
		history: cfg.History,
		log:     log,
	}
}

// Upload authenticates with creds and sets the image at path as the banner.
//
// Errors: model.ErrMissingCredentials before any network activity,
// ErrImageNotFound before the remote call, or a *xapi.RemoteError from the
// single remote call. Nothing is retried.
func (u *Uploader) Upload(ctx context.Context, creds model.Credentials, path string) (*Result, error) {
	u.log.Debug("authenticating", "credentials", creds)

	client, err := u.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}

	res := newResult(img)
	u.log.Info("uploading banner",
		"path", res.Path,
		"bytes", res.SizeBytes,
		"content_type", res.ContentType,
	)

	start := time.Now()
	uploadErr := client.SetProfileBanner(ctx, img)
	res.Duration = time.Since(start)

	u.record(ctx, res, uploadErr)

	if uploadErr != nil {
		u.log.Error("banner upload failed", "path", res.Path, "error", uploadErr)
		return nil, fmt.Errorf("upload banner: %w", uploadErr)
	}

	u.log.Info("banner updated", "path", res.Path, "duration", res.Duration)
	return res, nil
}

// Plan runs the local checks of Upload without contacting the API.
func (u *Uploader) Plan(creds model.Credentials, path string) (*Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return newResult(img), nil
}

func (u *Uploader) record(ctx context.Context, res *Result, uploadErr error) {
	if u.history == nil {
		return
	}

	rec := model.UploadRecord{
		Path:        res.Path,
		SizeBytes:   res.SizeBytes,
		SHA256:      res.SHA256,
		ContentType: res.ContentType,
		Status:      model.StatusOK,
	}
	if uploadErr != nil {
		rec.Status = model.StatusFailed
		rec.Error = uploadErr.Error()
	}

	// a cancelled run still gets its failure recorded
	if err := u.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		u.log.Warn("failed to record upload", "error", err)
	}
}

func newResult(img model.Image) *Result {
	sum := sha256.Sum256(img.Data)
	return &Result{
		Path:        img.Path,
		SizeBytes:   int64(len(img.Data)),
		SHA256:      hex.EncodeToString(sum[:]),
		ContentType: img.ContentType,
	}
}
