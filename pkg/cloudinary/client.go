// Package cloudinary provides a lightweight Cloudinary upload API client.
// Uses raw HTTP calls (no SDK); only signed upload and destroy are implemented.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Cloudinary API endpoint root.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("cloudinary: not configured")

// UploadParams are the signed upload options.
type UploadParams struct {
	Folder   string
	PublicID string
	Filename string // multipart file name sent to Cloudinary
}

// UploadResult is the part of the upload response we keep.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
}

// APIError is a non-2xx response from Cloudinary.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudinary: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Cloudinary image upload API.
type Client struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string

	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a Client with a 30s HTTP timeout.
func NewClient(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		CloudName:  cloudName,
		APIKey:     apiKey,
		APISecret:  apiSecret,
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Configured reports whether all credentials are set.
func (c *Client) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Upload streams data to /image/upload as a signed request.
func (c *Client) Upload(ctx context.Context, params UploadParams, data io.Reader) (*UploadResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	signed := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if params.Folder != "" {
		signed["folder"] = params.Folder
	}
	if params.PublicID != "" {
		signed["public_id"] = params.PublicID
	}
	signed["signature"] = Sign(signed, c.APISecret)
	signed["api_key"] = c.APIKey

	filename := params.Filename
	if filename == "" {
		filename = "upload"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadBody(mw, signed, filename, data))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload"), pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res UploadResult
	if err := c.do(req, &res); err != nil {
		pr.Close()
		return nil, err
	}
	return &res, nil
}

func writeUploadBody(mw *multipart.Writer, fields map[string]string, filename string, data io.Reader) error {
	for _, k := range sortedKeys(fields) {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, data); err != nil {
		return err
	}
	return mw.Close()
}

// Destroy deletes the image with publicID. A "not found" result is treated as
// success so callers can retry freely.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	params["signature"] = Sign(params, c.APISecret)
	params["api_key"] = c.APIKey

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("destroy"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res struct {
		Result string `json:"result"`
	}
	if err := c.do(req, &res); err != nil {
		return err
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("cloudinary: destroy %s: unexpected result %q", publicID, res.Result)
	}
}

func (c *Client) endpoint(action string) string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	return base + "/" + url.PathEscape(c.CloudName) + "/image/" + action
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("cloudinary: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		msg := e.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cloudinary: decode response: %w", err)
	}
	return nil
}

// Sign computes the Cloudinary request signature: the params sorted by key,
// joined as k=v with '&', the API secret appended, SHA-1 hex encoded.
// Empty values are skipped.
func Sign(params map[string]string, apiSecret string) string {
	var parts []string
	for _, k := range sortedKeys(params) {
		if params[k] == "" {
			continue
		}
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + apiSecret))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
