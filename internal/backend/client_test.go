package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ftmixer/internal/bc"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
)

func tinyPNG(t *testing.T, c color.Gray) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = c.Y
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example")
	assert.Error(t, err)
	_, err = New("::")
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/3", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "pixels", string(b))
		assert.Equal(t, "lena.png", hdr.Filename)
		_ = json.NewEncoder(w).Encode(map[string]string{"filepath": "static/uploads/image_3.png"})
	}))

	res, err := c.Upload(context.Background(), 3, "lena.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "static/uploads/image_3.png", res.Filepath)
}

func TestUploadRejected(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No selected file"}`))
	}))
	_, err := c.Upload(context.Background(), 1, "x.png", strings.NewReader(""))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "No selected file", se.Message)
}

func TestComponentBothBodyShapes(t *testing.T) {
	want := tinyPNG(t, color.Gray{Y: 200})
	enc := base64.StdEncoding.EncodeToString(want)
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/component/1/phase":
			_ = json.NewEncoder(w).Encode(mix.Response{ImageData: enc})
		case "/component/2/magnitude":
			// unloaded slot: bare base64, no JSON envelope
			_, _ = w.Write([]byte(enc))
		case "/component/4/image":
			_ = json.NewEncoder(w).Encode(mix.Response{})
		default:
			http.NotFound(w, r)
		}
	}))

	got, err := c.Component(context.Background(), 1, mix.Phase)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = c.Component(context.Background(), 2, mix.Magnitude)
	require.NoError(t, err)
	img, err := DecodePNG(got)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	_, err = c.Image(context.Background(), 4)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = c.Component(context.Background(), 3, mix.Real)
	var se *StatusError
	assert.ErrorAs(t, err, &se)
}

func TestAdjustBC(t *testing.T) {
	var got adjustBody
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/adjust_bc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, c.AdjustBC(context.Background(), 2, bc.Value{Brightness: 0.3, Contrast: 1.5}))
	assert.Equal(t, adjustBody{SlotID: 2, Brightness: 0.3, Contrast: 1.5}, got)
}

func TestProcessFT(t *testing.T) {
	out := tinyPNG(t, color.Gray{Y: 10})
	var got mix.Request
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(mix.Response{ImageData: base64.StdEncoding.EncodeToString(out)})
	}))

	req := mix.Request{RequestID: 9, Port: 1, Mode: mix.RealImaginary, RegionEnabled: true}
	b, err := c.ProcessFT(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, out, b)
	assert.Equal(t, req, got)
}

func TestProcessFTNoImages(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No images loaded"}`))
	}))
	_, err := c.ProcessFT(context.Background(), mix.Request{})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	a := tr.Next(1)
	b := tr.Next(1)
	c := tr.Next(2)
	assert.False(t, tr.Latest(1, a))
	assert.True(t, tr.Latest(1, b))
	assert.True(t, tr.Latest(2, c))
	assert.False(t, tr.Latest(3, 0))
}
