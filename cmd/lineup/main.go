package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mmcdole/lineup/internal/app"
	"github.com/mmcdole/lineup/internal/config"
	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/log"
	"github.com/mmcdole/lineup/internal/render"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		handle      string
		bestBall    bool
		refresh     bool
		top         bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&handle, "user", "", "Sleeper username to report on")
	flag.BoolVar(&bestBall, "best-ball", false, "include best-ball leagues")
	flag.BoolVar(&refresh, "refresh", false, "bypass cached league data")
	flag.BoolVar(&top, "top", false, "show most rostered players instead of lineup issues")
	flag.Parse()

	if showVersion {
		fmt.Printf("lineup %s\n", Version)
		return
	}
	if handle == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(handle, bestBall, refresh, top); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(handle string, bestBall, refresh, top bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	userID, err := services.Leagues.ResolveUser(ctx, handle)
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("no Sleeper user named %q", handle)
	}
	if err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)
	width := 0
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}
	printer := render.NewPrinter(os.Stdout, isTTY, width)

	if top {
		return printer.TopPlayers(services.Leagues.TopPlayers(ctx, userID))
	}
	return printer.StatusReport(services.Leagues.StatusReport(ctx, userID, refresh, bestBall))
}
