package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// CloudinaryConfig holds the two process-wide values the unsigned upload
// endpoint needs.
type CloudinaryConfig struct {
	CloudName    string // account identifier, part of the URL
	UploadPreset string // unsigned upload authorization token
	BaseURL      string // ex: "https://api.cloudinary.com"
}

// Cloudinary uploads photos with unsigned presets.
type Cloudinary struct {
	endpoint string
	preset   string
	client   *http.Client
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCloudinary builds the client. A nil httpClient means http.DefaultClient,
// so no timeout is applied beyond the transport defaults.
func NewCloudinary(cfg CloudinaryConfig, httpClient *http.Client) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.UploadPreset == "" {
		return nil, errors.New("cloudinary: cloud name and upload preset are required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Cloudinary{
		endpoint: fmt.Sprintf("%s/v1_1/%s/image/upload", strings.TrimRight(base, "/"), url.PathEscape(cfg.CloudName)),
		preset:   cfg.UploadPreset,
		client:   httpClient,
	}, nil
}

func (c *Cloudinary) Name() string { return "cloudinary" }

// Upload posts one file as multipart form data and returns its secure_url.
func (c *Cloudinary) Upload(ctx context.Context, f File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", &Error{File: f.Name, Err: fmt.Errorf("open: %w", err)}
	}
	defer func() {
		_ = body.Close()
	}()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeForm(mw, f, body))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return "", &Error{File: f.Name, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return "", &Error{File: f.Name, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out cloudinaryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", &Error{File: f.Name, Err: fmt.Errorf("status %d: malformed response: %w", resp.StatusCode, err)}
	}
	if out.SecureURL == "" {
		reason := fmt.Sprintf("status %d: no secure_url in response", resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			reason = fmt.Sprintf("status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", &Error{File: f.Name, Err: errors.New(reason)}
	}

	return out.SecureURL, nil
}

func (c *Cloudinary) writeForm(mw *multipart.Writer, f File, body io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
