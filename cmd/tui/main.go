package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/crefinex/internal/application"
	"github.com/JonMunkholm/crefinex/internal/config"
	"github.com/JonMunkholm/crefinex/internal/core"
	_ "github.com/JonMunkholm/crefinex/internal/core/resources" // Register all resources
	"github.com/JonMunkholm/crefinex/internal/database"
	"github.com/JonMunkholm/crefinex/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

const logFile = "crefinex-tui.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	closeLogs := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
		Output: f,
	})
	defer closeLogs()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := core.NewService(pool, core.Options{
		MaxIDs:        cfg.Mutation.MaxIDs,
		DeleteTimeout: cfg.Mutation.Timeout,
		Limiter:       core.NewMutationLimiter(cfg.Mutation.MaxConcurrent, cfg.Mutation.MaxWaitTime),
	})

	m := application.New(service, application.Options{
		PageSize:        cfg.Table.PageSize,
		SuggestionLimit: cfg.Table.SuggestionLimit,
		Debounce:        cfg.Table.Debounce,
		Timeout:         cfg.Mutation.Timeout,
	})

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
