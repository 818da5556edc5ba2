// Package backend talks to the image-processing service that owns the FFT
// work: uploads, component previews, brightness/contrast and mixing.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ftmixer/internal/bc"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
)

var (
	// ErrNoImages is returned by ProcessFT when no slot has an image loaded.
	ErrNoImages = errors.New("backend: no images loaded")
	// ErrEmptyImage is returned when a response carries no image data.
	ErrEmptyImage = errors.New("backend: empty image data")
)

// StatusError is a non-2xx reply.
type StatusError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s: %d %s", e.Endpoint, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %s: %d %s", e.Endpoint, e.Code, http.StatusText(e.Code))
}

// Client is safe for concurrent use.
type Client struct {
	base string
	hc   *http.Client
	log  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l zerolog.Logger) Option    { return func(c *Client) { c.log = l } }

// WithTimeout sets a per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc = &http.Client{Timeout: d}
		}
	}
}

// New returns a client for the service at baseURL (e.g. http://127.0.0.1:5000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: bad url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: url %q needs http or https scheme", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(u.String(), "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		log:  log.With().Str("component", "backend").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// UploadResult is the upload reply.
type UploadResult struct {
	Filepath string `json:"filepath"`
}

// Upload sends a file to a 1-based slot as multipart field "file".
func (c *Client) Upload(ctx context.Context, slot int, filename string, r io.Reader) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("backend: upload form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return UploadResult{}, fmt.Errorf("backend: upload read: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("backend: upload form: %w", err)
	}

	endpoint := fmt.Sprintf("/upload/%d", slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.do(req, endpoint)
	if err != nil {
		return UploadResult{}, err
	}
	var res UploadResult
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &res); err != nil {
			return UploadResult{}, fmt.Errorf("backend: %s: decode: %w", endpoint, err)
		}
	}
	c.log.Debug().Int("slot", slot).Str("filepath", res.Filepath).Msg("uploaded")
	return res, nil
}

// Component fetches a slot's rendered component (or the base image for
// mix.Image) as PNG bytes.
func (c *Client) Component(ctx context.Context, slot int, comp mix.Component) ([]byte, error) {
	endpoint := fmt.Sprintf("/component/%d/%s", slot, comp)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeImageBody(endpoint, data)
}

// Image fetches a slot's (possibly adjusted) base image.
func (c *Client) Image(ctx context.Context, slot int) ([]byte, error) {
	return c.Component(ctx, slot, mix.Image)
}

type adjustBody struct {
	SlotID     int     `json:"slot_id"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

// AdjustBC sends a slot's final brightness/contrast.
func (c *Client) AdjustBC(ctx context.Context, slot int, v bc.Value) error {
	const endpoint = "/adjust_bc"
	_, err := c.postJSON(ctx, endpoint, adjustBody{SlotID: slot, Brightness: v.Brightness, Contrast: v.Contrast})
	return err
}

// ProcessFT asks the backend for a mix and returns the output PNG bytes.
func (c *Client) ProcessFT(ctx context.Context, r mix.Request) ([]byte, error) {
	const endpoint = "/process_ft"
	data, err := c.postJSON(ctx, endpoint, r)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(se.Message), "no images") {
			return nil, fmt.Errorf("%w: %s", ErrNoImages, se.Message)
		}
		return nil, err
	}
	return decodeImageBody(endpoint, data)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: encode: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: read: %w", endpoint, err)
	}
	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
		var body mix.Response
		if json.Unmarshal(data, &body) == nil {
			se.Message = body.Error
		}
		return nil, se
	}
	return data, nil
}

// decodeImageBody accepts {"image_data": "<base64>"} or a bare base64 string,
// which the backend returns for slots without an image.
func decodeImageBody(endpoint string, data []byte) ([]byte, error) {
	var payload string
	var body mix.Response
	if err := json.Unmarshal(data, &body); err == nil {
		payload = body.ImageData
	} else {
		var s string
		if json.Unmarshal(data, &s) == nil {
			payload = s
		} else {
			payload = string(bytes.TrimSpace(data))
		}
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, endpoint)
	}
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: base64: %w", endpoint, err)
	}
	return img, nil
}

// DecodePNG decodes PNG bytes returned by the backend.
func DecodePNG(b []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("backend: png: %w", err)
	}
	return img, nil
}
