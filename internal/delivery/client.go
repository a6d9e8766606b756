package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"mouthpiece/internal/logging"
	"mouthpiece/internal/services"
)

const (
	DefaultUploadURL = "http://localhost:8080/avatar/upload"
	DefaultSpeakURL  = "http://localhost:8080/avatar/speak"
	userAgent        = "mouthpiece/0.1.0"
)

// Response is the runtime's reply to every endpoint.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client uploads bundles and triggers playback.
type Client struct {
	uploadURL string
	speakURL  string
	http      *http.Client
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logging.NewComponentLogger(logger, "delivery")
	}
}

// NewClient builds a client for the given endpoints. Empty URLs take the
// local runtime defaults; timeout <= 0 means 10 seconds.
func NewClient(uploadURL, speakURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		uploadURL: defaultURL(uploadURL, DefaultUploadURL),
		speakURL:  defaultURL(speakURL, DefaultSpeakURL),
		http:      &http.Client{Timeout: timeout},
		logger:    logging.NewComponentLogger(nil, "delivery"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts one request as a multipart form with fields fileName,
// fileType and file.
func (c *Client) Upload(ctx context.Context, req Request) (Response, error) {
	if req.Name == "" || len(req.Content) == 0 {
		return Response{}, failure("upload", "request requires a name and content", nil)
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("fileName", req.Name); err != nil {
		return Response{}, failure("upload", "build form", err)
	}
	if err := form.WriteField("fileType", string(req.FileType)); err != nil {
		return Response{}, failure("upload", "build form", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	header.Set("Content-Type", req.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return Response{}, failure("upload", "build form", err)
	}
	if _, err := part.Write(req.Content); err != nil {
		return Response{}, failure("upload", "build form", err)
	}
	if err := form.Close(); err != nil {
		return Response{}, failure("upload", "build form", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return Response{}, failure("upload", "build request", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.do(httpReq, "upload")
	if err != nil {
		return Response{}, err
	}
	logging.WithContext(ctx, c.logger).Info("upload accepted",
		logging.String(logging.FieldEventType, "delivery_uploaded"),
		logging.String("name", req.Name),
		logging.String("file_type", string(req.FileType)),
		logging.Int("bytes", len(req.Content)),
		logging.String("runtime_message", resp.Message),
	)
	return resp, nil
}

// Play asks the runtime to play the pair stored under name.
func (c *Client) Play(ctx context.Context, name string) (Response, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Response{}, failure("play", "name required", nil)
	}
	target, err := url.Parse(c.speakURL)
	if err != nil {
		return Response{}, failure("play", "parse speak url", err)
	}
	q := target.Query()
	q.Set("file", name)
	target.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, failure("play", "build request", err)
	}
	resp, err := c.do(httpReq, "play")
	if err != nil {
		return Response{}, err
	}
	logging.WithContext(ctx, c.logger).Info("playback triggered",
		logging.String(logging.FieldEventType, "delivery_played"),
		logging.String("name", name),
	)
	return resp, nil
}

// Deliver uploads the audio then the lipsync request and, when play is set,
// triggers playback. It stops at the first failure.
func (c *Client) Deliver(ctx context.Context, b Bundle, play bool) error {
	for _, req := range b.Requests() {
		if _, err := c.Upload(ctx, req); err != nil {
			return err
		}
	}
	if play {
		if _, err := c.Play(ctx, b.Name); err != nil {
			return err
		}
	}
	return nil
}

// Ping reports whether the upload endpoint's host answers at all.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, c.uploadURL, nil)
	if err != nil {
		return failure("ping", "build request", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return failure("ping", c.uploadURL, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(req *http.Request, op string) (Response, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, failure(op, "send request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Response{}, failure(op, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, failure(op, fmt.Sprintf("runtime returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, failure(op, "decode response", err)
	}
	if !strings.EqualFold(out.Status, "success") {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "no message"
		}
		return out, failure(op, fmt.Sprintf("runtime reported %q: %s", out.Status, msg), nil)
	}
	return out, nil
}

func failure(op, msg string, err error) error {
	return services.Wrap(services.ErrDeliveryFailure, "deliver", op, msg, err)
}

func defaultURL(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
