package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/roach88/recon/internal/artifact"
	"github.com/roach88/recon/internal/ir"
)

// Multipart field names expected by the processing endpoint.
const (
	FieldCurrent  = "file_current"
	FieldPrevious = "file_prev"
	FieldLabel    = "month"
)

// ProcessPath is the submission endpoint relative to the base address.
const ProcessPath = "/process"

// DefaultMaxResponseBytes bounds a submission response body.
const DefaultMaxResponseBytes = 1 << 20

// Client issues requests against one base address.
//
// A Client has no timeout unless WithTimeout is given; a submission then
// runs until the server answers or the connection fails.
type Client struct {
	base        string
	http        *http.Client
	timeout     time.Duration
	maxResponse int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxResponseBytes bounds the submission response body.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		c.maxResponse = n
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for baseURL. A trailing slash on baseURL is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:        strings.TrimRight(baseURL, "/"),
		http:        http.DefaultClient,
		maxResponse: DefaultMaxResponseBytes,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string {
	return c.base
}

// Submit posts both files and the label as one multipart request and
// returns the raw success body. Any non-2xx status is an *Error.
func (c *Client) Submit(ctx context.Context, req ir.SubmitRequest) ([]byte, error) {
	url := c.base + ProcessPath

	body, contentType, err := encodeSubmission(req)
	if err != nil {
		return nil, &Error{Op: OpSubmit, URL: url, Err: err}
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &Error{Op: OpSubmit, URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "recon/"+ir.ClientVersion)

	c.logger.Debug("submitting",
		"url", url,
		"attempt", req.AttemptID,
		"current", req.Current.Name,
		"previous", req.Previous.Name,
		"label", req.Label,
		"bytes", body.Len(),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &Error{Op: OpSubmit, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, &Error{Op: OpSubmit, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: OpSubmit, URL: url, StatusCode: resp.StatusCode, Detail: faultDetail(data)}
	}
	if int64(len(data)) > c.maxResponse {
		return nil, &Error{Op: OpSubmit, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, c.maxResponse)}
	}

	c.logger.Debug("submission answered", "url", url, "status", resp.StatusCode, "bytes", len(data))
	return data, nil
}

// Fetch streams the artifact identified by token into w and returns the
// number of bytes written.
func (c *Client) Fetch(ctx context.Context, token string, w io.Writer) (int64, error) {
	if err := artifact.ValidateToken(token); err != nil {
		return 0, &Error{Op: OpFetch, URL: c.base + artifact.DownloadPath, Err: err}
	}
	url := artifact.Reference(c.base, token)

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &Error{Op: OpFetch, URL: url, Err: err}
	}
	httpReq.Header.Set("User-Agent", "recon/"+ir.ClientVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &Error{Op: OpFetch, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, &Error{Op: OpFetch, URL: url, StatusCode: resp.StatusCode, Detail: faultDetail(data)}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Op: OpFetch, URL: url, Err: fmt.Errorf("copy body: %w", err)}
	}
	c.logger.Debug("artifact fetched", "url", url, "bytes", n)
	return n, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// encodeSubmission builds the multipart body. File parts carry the
// declared media type of the admitted file.
func encodeSubmission(req ir.SubmitRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := writeFilePart(mw, FieldCurrent, req.Current); err != nil {
		return nil, "", err
	}
	if err := writeFilePart(mw, FieldPrevious, req.Previous); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField(FieldLabel, req.Label); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", FieldLabel, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFilePart(mw *multipart.Writer, field string, f ir.InputFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write %s: %w", field, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
