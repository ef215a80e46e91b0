package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/dghubble/go-twitter/twitter"

	"github.com/mikequentel/banner/internal/model"
)

const (
	bannerPath = "account/update_profile_banner.json"

	// error bodies beyond this are cut
	maxErrorBody = 64 << 10
)

// SetProfileBanner POSTs the image as multipart form field "banner".
// It is attempted exactly once.
func (c *Client) SetProfileBanner(ctx context.Context, img model.Image) error {
	body, err := newBannerBody(img)
	if err != nil {
		return fmt.Errorf("encode banner: %w", err)
	}

	req, err := c.api.New().Post(bannerPath).BodyProvider(body).Request()
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	failure := new(errorBody)
	resp, err := c.api.New().ResponseDecoder(errorDecoder{}).Do(req.WithContext(ctx), nil, failure)
	if err != nil {
		return newRemoteError(opUpdateProfileBanner, resp, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{
			Op:         opUpdateProfileBanner,
			StatusCode: resp.StatusCode,
			API:        failure.api,
			Body:       failure.raw,
		}
	}
	return nil
}

// bannerBody is a sling.BodyProvider for the multipart upload.
type bannerBody struct {
	contentType string
	data        []byte
}

func newBannerBody(img model.Image) (*bannerBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="banner"; filename=%q`, filepath.Base(img.Path)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &bannerBody{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

func (b *bannerBody) ContentType() string { return b.contentType }

func (b *bannerBody) Body() (io.Reader, error) { return bytes.NewReader(b.data), nil }

// errorBody keeps the raw text alongside the decoded v1.1 error list,
// since proxies and outages answer with HTML or plain text.
type errorBody struct {
	api twitter.APIError
	raw string
}

// errorDecoder is a sling.ResponseDecoder that never fails on non-JSON bodies.
type errorDecoder struct{}

func (errorDecoder) Decode(resp *http.Response, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return err
	}
	eb, ok := v.(*errorBody)
	if !ok {
		return json.Unmarshal(data, v)
	}
	eb.raw = strings.TrimSpace(string(data))
	_ = json.Unmarshal(data, &eb.api)
	return nil
}
