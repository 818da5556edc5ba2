// Package server exposes a session over HTTP: JSON state, rendered previews
// and outputs as PNG, uploads, and websocket channels for UI input and
// state events.
package server

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ftmixer/internal/backend"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/session"
)

type Options struct {
	// StaticDir, when set, is served under /static with its index.html at /.
	StaticDir string
	Logger    *zerolog.Logger
}

type Server struct {
	sess     *session.Session
	log      zerolog.Logger
	static   string
	upgrader websocket.Upgrader
	router   *gin.Engine
}

func New(sess *session.Session, o Options) *Server {
	s := &Server{
		sess:     sess,
		log:      log.With().Str("component", "server").Logger(),
		static:   o.StaticDir,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	if o.Logger != nil {
		s.log = *o.Logger
	}
	s.router = s.setupRouter()
	return s
}

// Handler is the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(corsMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/state", s.handleState)
	r.GET("/ws/control", s.handleControlWS)
	r.GET("/ws/events", s.handleEventsWS)
	r.POST("/upload/:slot", s.handleUpload)
	r.GET("/surface/:file", s.handleSurface)
	r.GET("/output/:file", s.handleOutput)
	r.GET("/image/:file", s.handleImage)

	if s.static != "" {
		r.Static("/static", s.static)
		r.GET("/", func(c *gin.Context) { c.File(filepath.Join(s.static, "index.html")) })
	}
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := s.log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"active_port": int(s.sess.ActivePort()),
		"clients":     s.sess.Subscribers(),
		"uptime_s":    s.sess.Uptime().Seconds(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Snapshot())
}

// pngParam parses ":file" values like "2.png" (or bare "2").
func pngParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(c.Param("file"), ".png"))
	return n, err == nil
}

func (s *Server) handleSurface(c *gin.Context) {
	id, ok := pngParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad surface id"})
		return
	}
	f, ok := s.sess.Frame(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown surface"})
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleOutput(c *gin.Context) {
	p, ok := pngParam(c)
	if !ok || !ports.PortID(p).Valid() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad port"})
		return
	}
	b, ok := s.sess.Output(ports.PortID(p))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no output yet"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) handleImage(c *gin.Context) {
	slot, ok := pngParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad slot"})
		return
	}
	b, ok := s.sess.Image(slot)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no image"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) handleUpload(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad slot"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "No file part"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	defer f.Close()

	res, err := s.sess.Upload(c.Request.Context(), slot, fh.Filename, f)
	if err != nil {
		var se *backend.StatusError
		switch {
		case errors.Is(err, session.ErrUnknownSlot):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &se):
			msg := se.Message
			if msg == "" {
				msg = err.Error()
			}
			c.JSON(se.Code, errorResponse{Error: msg})
		default:
			c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}
