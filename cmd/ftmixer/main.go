package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ftmixer/internal/backend"
	"github.com/coreman2200/funtimes-ftmixer/internal/config"
	"github.com/coreman2200/funtimes-ftmixer/internal/selector"
	"github.com/coreman2200/funtimes-ftmixer/internal/server"
	"github.com/coreman2200/funtimes-ftmixer/internal/session"
)

func main() {
	// ---- Flags (remain usable; config.yaml overrides what it sets) ----
	def := config.Default()
	var (
		addr       = flag.String("addr", def.Listen, "HTTP listen address")
		backendURL = flag.String("backend", def.Backend.URL, "image-processing backend base URL")
		timeout    = flag.Duration("timeout", def.Backend.Timeout, "per-call backend timeout")
		width      = flag.Int("width", def.Surface.Width, "preview surface width (px)")
		height     = flag.Int("height", def.Surface.Height, "preview surface height (px)")
		endOnLeave = flag.Bool("end-on-leave", false, "end a region drag when the pointer leaves its surface")
		cancel2nd  = flag.Bool("cancel-on-second-press", false, "a press on another surface ends the running drag")
		staticDir  = flag.String("static", "", "directory with the browser UI")
		level      = flag.String("log-level", def.Log.Level, "log level")
		jsonLogs   = flag.Bool("log-json", false, "log JSON instead of console text")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = nil
	}

	// ---- Effective params (config overrides flags where available) ----
	eff := *config.Default()
	eff.Listen = *addr
	eff.Backend = config.Backend{URL: *backendURL, Timeout: *timeout}
	eff.Surface = config.Surface{Width: *width, Height: *height}
	eff.Drag = config.Drag{EndOnLeave: *endOnLeave, CancelOnSecondPress: *cancel2nd}
	eff.StaticDir = *staticDir
	eff.Log = config.Log{Level: *level, JSON: *jsonLogs}
	if cfg != nil {
		eff.Region = cfg.Region
		eff.Overlay = cfg.Overlay
		eff.Drag.EndOnLeave = eff.Drag.EndOnLeave || cfg.Drag.EndOnLeave
		eff.Drag.CancelOnSecondPress = eff.Drag.CancelOnSecondPress || cfg.Drag.CancelOnSecondPress
		eff.Log.JSON = eff.Log.JSON || cfg.Log.JSON
		if cfg.Listen != "" {
			eff.Listen = cfg.Listen
		}
		if cfg.Backend.URL != "" {
			eff.Backend.URL = cfg.Backend.URL
		}
		if cfg.Backend.Timeout > 0 {
			eff.Backend.Timeout = cfg.Backend.Timeout
		}
		if cfg.Surface.Width > 0 {
			eff.Surface.Width = cfg.Surface.Width
		}
		if cfg.Surface.Height > 0 {
			eff.Surface.Height = cfg.Surface.Height
		}
		if cfg.StaticDir != "" {
			eff.StaticDir = cfg.StaticDir
		}
		if cfg.Log.Level != "" {
			eff.Log.Level = cfg.Log.Level
		}
	}

	// ---- Logging ----
	setupLogging(eff.Log)
	if cfg == nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}
	if err := eff.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	style, _ := eff.Style()

	// ---- Backend + session ----
	be, err := backend.New(eff.Backend.URL,
		backend.WithTimeout(eff.Backend.Timeout),
		backend.WithLogger(log.With().Str("component", "backend").Logger()))
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}
	sess, err := session.New(be, session.Options{
		Region:  eff.Region,
		Policy:  selector.Policy{EndOnLeave: eff.Drag.EndOnLeave, CancelOnSecondPress: eff.Drag.CancelOnSecondPress},
		Style:   style,
		Surface: eff.Surface.Size(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("session")
	}
	defer sess.Close()
	sess.Prime()

	// ---- HTTP ----
	srv := &http.Server{
		Addr:        eff.Listen,
		Handler:     server.New(sess, server.Options{StaticDir: eff.StaticDir}).Handler(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", eff.Listen).Str("backend", eff.Backend.URL).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
		_ = srv.Close()
	}
}

func setupLogging(l config.Log) {
	zerolog.TimeFieldFormat = time.RFC3339
	if !l.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
