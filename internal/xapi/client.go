// Package xapi is the narrow Twitter/X API surface the banner tool needs:
// OAuth1 user-context authentication and profile banner replacement.
package xapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	"github.com/dghubble/sling"

	"github.com/mikequentel/banner/internal/model"
)

// DefaultBaseURL is the v1.1 REST root. The banner endpoint has no v2 equivalent.
const DefaultBaseURL = "https://api.twitter.com/1.1/"

// Authenticator produces a client bound to one credential set.
type Authenticator interface {
	Authenticate(ctx context.Context, creds model.Credentials) (BannerClient, error)
}

// BannerClient is the set of remote operations available after authentication.
type BannerClient interface {
	// SetProfileBanner replaces the account's banner with the image bytes.
	SetProfileBanner(ctx context.Context, img model.Image) error

	// VerifyCredentials returns the account the credentials belong to.
	VerifyCredentials(ctx context.Context) (*model.Account, error)
}

// OAuth1Authenticator signs every request with the four user-context secrets.
type OAuth1Authenticator struct {
	// HTTPClient supplies the underlying transport. Nil uses the default.
	HTTPClient *http.Client
	// Timeout bounds each request. Zero leaves it to the transport.
	Timeout time.Duration
}

// Authenticate builds a signed client. It fails with model.ErrMissingCredentials
// before any network activity if a value is empty. No request is sent here.
func (a *OAuth1Authenticator) Authenticate(ctx context.Context, creds model.Credentials) (BannerClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if a.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, a.HTTPClient)
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	httpClient := config.Client(ctx, token)
	httpClient.Timeout = a.Timeout

	return newClient(httpClient), nil
}

// Client is an authenticated API client.
type Client struct {
	api     *sling.Sling
	twitter *twitter.Client
}

func newClient(httpClient *http.Client) *Client {
	return &Client{
		api:     sling.New().Client(httpClient).Base(DefaultBaseURL),
		twitter: twitter.NewClient(httpClient),
	}
}

// VerifyCredentials calls account/verify_credentials.json.
func (c *Client) VerifyCredentials(ctx context.Context) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, resp, err := c.twitter.Accounts.VerifyCredentials(&twitter.AccountVerifyParams{
		SkipStatus:   twitter.Bool(true),
		IncludeEmail: twitter.Bool(false),
	})
	if err != nil {
		return nil, newRemoteError(opVerifyCredentials, resp, err)
	}
	// go-twitter reports no error for a failed status with an empty body
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, &RemoteError{Op: opVerifyCredentials, StatusCode: resp.StatusCode}
	}

	return &model.Account{
		ID:               user.ID,
		ScreenName:       user.ScreenName,
		ProfileBannerURL: user.ProfileBannerURL,
	}, nil
}
