package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/lifesync/internal/config"
	"github.com/edgard/lifesync/internal/gemini"
	"github.com/edgard/lifesync/internal/logger"
	"github.com/edgard/lifesync/internal/nutrition"
)

// app holds what every subcommand needs: configuration and a logger.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

// loadApp reads configuration and builds a logger writing to logOut.
func loadApp(configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger.New(logOut, cfg.Log.Level, cfg.Log.JSON)}, nil
}

func (a *app) parser() (*nutrition.Parser, error) {
	policy, err := nutrition.ParseMatchPolicy(a.cfg.Nutrition.MatchPolicy)
	if err != nil {
		return nil, err
	}

	var table *nutrition.Table
	if path := a.cfg.Nutrition.FoodsFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open food table: %w", err)
		}
		defer f.Close()
		table, err = nutrition.LoadTable(f, a.log)
		if err != nil {
			return nil, err
		}
	} else {
		table, err = nutrition.DefaultTable(a.log)
		if err != nil {
			return nil, err
		}
	}

	parser := nutrition.NewParser(table, policy)
	a.log.Debug("Food table loaded", "foods", table.Len(), "policy", parser.Policy())
	return parser, nil
}

// geminiClient returns nil without error when no API key is configured.
func (a *app) geminiClient(ctx context.Context) (*gemini.Client, error) {
	if a.cfg.Gemini.APIKey == "" {
		return nil, nil
	}
	return gemini.NewClient(ctx, a.cfg.Gemini, nil, a.log)
}

func (a *app) dietitian(ctx context.Context, clock clockwork.Clock) (*gemini.Dietitian, error) {
	client, err := a.geminiClient(ctx)
	if err != nil {
		return nil, err
	}
	var gen gemini.Generator
	if client != nil {
		gen = client
	}
	return gemini.NewDietitian(gen, a.cfg.Gemini, clock, a.log), nil
}
