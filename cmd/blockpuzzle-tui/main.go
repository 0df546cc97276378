package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"svw.info/blockpuzzle/internal/adapters/tui"
	"svw.info/blockpuzzle/internal/config"
	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/hint"
	"svw.info/blockpuzzle/internal/infrastructure/wallet"
	"svw.info/blockpuzzle/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "", "YAML config file (optional)")
	modeStr := flag.String("mode", "score", "score|coins")
	seed := flag.Uint64("seed", 0, "generator seed (0 = time based)")
	logPath := flag.String("log-file", "", "write logs to this file (the screen is busy)")
	levelStr := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	mode, err := domain.ParseMode(*modeStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	lvl, err := config.ParseLevel(*levelStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))

	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	sess, err := session.New(cfg.SessionOptions(mode, s))
	if err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}

	w := wallet.NewLedger(cfg.OpeningWallet)
	logger.Info("session started", "mode", mode, "seed", s)
	app := tui.New(screen, sess, hint.NewFinder(), w, cfg.Palette, logger)
	payout, runErr := app.Run(context.Background())
	screen.Fini()

	bal, _ := w.Balance(context.Background())
	logger.Info("session exited", "payout", payout, "balance", bal)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "wallet: %v\n", runErr)
		return 1
	}
	if mode == domain.ModeCoins {
		fmt.Printf("collected %d coins, wallet balance %d\n", payout, bal)
	}
	return 0
}
