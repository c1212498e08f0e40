// Command viztris is a terminal falling-block game. Besides the keyboard it
// watches a named pipe for telemetry and taps every keyboard read, hex
// encoded, into a second named pipe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/plus3/viztris/config"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "viztris:", err)
		return 2
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "viztris:", err)
		return 1
	}
	defer logFile.Close()

	logger := log.New()
	logger.SetOutput(logFile)
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	sessionID := uuid.NewString()
	entry := logger.WithField("session", sessionID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	report, err := run(ctx, cfg, sessionID, entry)
	if report != nil {
		if rerr := report.Generate(os.Stdout); rerr != nil {
			entry.WithError(rerr).Warn("cannot print report")
		}
	}
	if err != nil {
		entry.WithError(err).Error("session failed")
		fmt.Fprintln(os.Stderr, "viztris:", err)
		return 1
	}
	return 0
}
