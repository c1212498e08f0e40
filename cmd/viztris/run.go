package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/plus3/viztris/config"
	"github.com/plus3/viztris/input"
	"github.com/plus3/viztris/session"
	"github.com/plus3/viztris/term"
)

// run owns the terminal and both channels for the duration of one game.
// Everything it acquires is released before it returns, on every path.
func run(ctx context.Context, cfg config.Config, sessionID string, logger log.FieldLogger) (report *Report, err error) {
	if err := term.CheckTerminal(os.Getenv("TERM")); err != nil {
		return nil, err
	}

	if !term.IsTerminal(term.Stdin.Fd()) {
		return nil, fmt.Errorf("%w: standard input is not a terminal", term.ErrUnsupportedTerminal)
	}
	restore, err := term.MakeRaw(term.Stdin.Fd())
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, restore())
	}()

	pipe, err := term.OpenChannel(cfg.Pipe)
	if err != nil {
		return nil, err
	}
	defer pipe.Close()

	ctrl, err := term.OpenChannel(cfg.PipeCtrl)
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()
	logger.WithField("pipe", pipe.Path).WithField("ctrl", ctrl.Path).Info("channels created")

	display := session.Display{
		HelpVisible:    cfg.ShowHelp,
		PreviewVisible: cfg.ShowNext,
		ColorEnabled:   cfg.Color,
	}
	screen := term.NewScreen(os.Stdout, display)
	screen.Begin()
	defer func() {
		screen.End()
		err = errors.Join(err, screen.Flush())
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.WithField("seed", seed).
		WithField("delay", cfg.FallDelay).
		WithField("color", cfg.Color).
		Info("game started")

	game := session.New(session.Options{
		FallDelay: cfg.FallDelay,
		Display:   display,
		Rand:      rand.New(rand.NewPCG(seed, seed>>1|1)),
		Observer:  screen,
		Log:       logger,
	})
	screen.Redraw(game.Snapshot())
	if err := screen.Flush(); err != nil {
		return nil, err
	}

	mux := input.NewMultiplexer(input.Options{
		Keyboard: term.Stdin,
		Control:  pipe,
		Tap:      ctrl,
		Waiter:   input.SelectWaiter{Keyboard: term.Stdin.Fd(), Control: pipe.Fd()},
		Log:      logger,
	})

	report = newReport(sessionID, seed, time.Now())
	outcome, err := loop(ctx, game, mux, screen, report)
	report.Finish(game, outcome, time.Now())

	logger.WithField("outcome", outcome).
		WithField("frames", report.Scheduler.Frames).
		Debug("scheduler stopped")
	return report, err
}

// loop feeds multiplexer events to the game until it ends, the context is
// cancelled or an I/O error occurs.
func loop(ctx context.Context, game *session.Session, mux *input.Multiplexer, screen *term.Screen, report *Report) (string, error) {
	for !game.Over() {
		if ctx.Err() != nil {
			return "interrupted", nil
		}

		ev, err := mux.Next(game.FallDelay())
		if err != nil {
			screen.ShowError(err)
			return "error", errors.Join(err, screen.Flush())
		}

		if ev.Status != input.StatusBuffered {
			screen.ShowStatus(ev.Status.String(), ev.Status.Keyboard(), ev.Status.Control())
		}
		if ev.Hex != "" {
			screen.ShowHex(ev.Hex)
		}
		if ev.HasTelemetry {
			screen.ShowTelemetry(ev.Telemetry)
		}

		start := time.Now()
		game.Apply(ev.Command)
		report.Record(ev, time.Since(start))

		if err := screen.Flush(); err != nil {
			return "error", fmt.Errorf("draw: %w", err)
		}
	}

	if game.Quit() {
		return "quit", nil
	}
	return "game over", nil
}
