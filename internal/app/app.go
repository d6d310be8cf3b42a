package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/lienzo/lienzo-go/internal/cli"
	"github.com/lienzo/lienzo-go/internal/config"
	"github.com/lienzo/lienzo-go/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Run bootstraps the Lienzo client application.
func Run(ctx context.Context, args []string) error {
	command := "shell"
	if len(args) > 0 {
		command = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	switch command {
	case "shell":
		return runShell(ctx, deps)
	case "whoami":
		return runWhoami(ctx, deps)
	case "logout":
		return deps.services.Session.Logout(ctx)
	case "version":
		fmt.Println("lienzo client, api", cfg.APIBaseURL)
		return nil
	default:
		return fmt.Errorf("unknown command %q, expected shell, whoami, logout, or version", command)
	}
}

func runWhoami(ctx context.Context, deps dependencies) error {
	identity := deps.services.Session.Identity(ctx)
	if !identity.LoggedIn() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (id %d, role %s)\n", identity.Username, identity.Email, identity.UserID, identity.Role)
	return nil
}

func runShell(ctx context.Context, deps dependencies) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lienzo> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	deps.poller.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := deps.poller.Shutdown(shutdownCtx); err != nil {
			deps.logger.Warn("poller shutdown", "error", err)
		}
	}()

	shell := cli.NewShell(rl, deps.services)
	if err := shell.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lienzo", "history")
}
