package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ftmixer/internal/backend"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/script"
	"github.com/coreman2200/funtimes-ftmixer/internal/session"
)

func main() {
	var (
		programPath = flag.String("program", "", "path to a mix.v1 program (YAML or JSON)")
		backendURL  = flag.String("backend", "http://127.0.0.1:5000", "image-processing backend base URL")
		outDir      = flag.String("out", ".", "directory for port1.png / port2.png")
		fps         = flag.Int("fps", 0, "pointer moves per second (0 = as fast as possible)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *programPath == "" {
		log.Fatal().Msg("provide -program path to a mix.v1 program")
	}
	prog, err := script.LoadFile(*programPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *programPath).Msg("load program")
	}

	be, err := backend.New(*backendURL)
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}
	// Backend round trips finish before the next step so outputs are deterministic.
	sess, err := session.New(be, session.DefaultOptions(), session.WithAsync(func(f func()) { f() }))
	if err != nil {
		log.Fatal().Err(err).Msg("session")
	}
	defer sess.Close()
	sess.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventDiagnostic {
			log.Warn().Str("code", ev.Diagnostic.Code).Str("detail", ev.Diagnostic.Detail).Msg(ev.Diagnostic.Summary)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := script.NewPlayer(script.SessionHooks(ctx, sess, filepath.Dir(*programPath)))
	if *fps > 0 {
		player.FrameDelay = time.Second / time.Duration(*fps)
	}
	if err := player.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("load")
	}

	start := time.Now()
	if err := player.Run(ctx); err != nil {
		log.Error().Err(err).Int("step", player.Index()-1).Msg("replay stopped")
	}

	for _, p := range ports.All() {
		b, ok := sess.Output(p)
		if !ok {
			log.Warn().Int("port", int(p)).Msg("no output")
			continue
		}
		path := filepath.Join(*outDir, fmt.Sprintf("port%d.png", p))
		if err := os.WriteFile(path, b, 0644); err != nil {
			log.Error().Err(err).Str("path", path).Msg("write output")
			continue
		}
		log.Info().Int("port", int(p)).Str("path", path).Msg("output written")
	}
	log.Info().Dur("took", time.Since(start)).Int("steps", len(prog.Steps)).Msg("done")
}
