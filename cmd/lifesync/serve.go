package main

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/edgard/lifesync/internal/auth"
	"github.com/edgard/lifesync/internal/bot"
	"github.com/edgard/lifesync/internal/bot/handlers"
	"github.com/edgard/lifesync/internal/bot/tasks"
	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/insights"
	"github.com/edgard/lifesync/internal/logger"
	"github.com/edgard/lifesync/internal/mcp"
	"github.com/edgard/lifesync/internal/server"
	"github.com/edgard/lifesync/internal/telegram"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := a.cfg.ValidateServe(); err != nil {
				return err
			}
			a.log = logger.NewLogger(a.cfg.Log.Level, a.cfg.Log.JSON)
			return serve(cmd, a)
		},
	}
}

func serve(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	cfg, log := a.cfg, a.log
	log.Info("Starting LifeSync", "addr", cfg.HTTP.Addr, "database", cfg.Database.Path, "telegram", cfg.TelegramEnabled())

	db, err := database.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer database.Close(db, log)

	clock := clockwork.NewRealClock()
	store := database.NewStore(db, clock, log)

	parser, err := a.parser()
	if err != nil {
		return err
	}
	dietitian, err := a.dietitian(ctx, clock)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock)
	if err != nil {
		return err
	}
	ins := insights.New(store, clock, time.Local)

	srv, err := server.New(server.Deps{
		HTTP:      cfg.HTTP,
		Auth:      cfg.Auth,
		Store:     store,
		Tokens:    tokens,
		Parser:    parser,
		Dietitian: dietitian,
		Insights:  ins,
		MCP:       mcp.NewHandler(parser, dietitian, log),
		Logger:    log,
	})
	if err != nil {
		return err
	}

	var (
		listener bot.Listener
		notifier tasks.Notifier
	)
	if cfg.TelegramEnabled() {
		tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
			tgbot.WithMiddlewares(logger.TelegramMiddleware(log.With("component", "telegram_updates"))))
		if err != nil {
			return err
		}
		commands := handlers.RegisterAllCommands(handlers.HandlerDeps{
			Logger:    log,
			Parser:    parser,
			Dietitian: dietitian,
		})
		if err := telegram.RegisterHandlers(tg, log, commands); err != nil {
			return err
		}
		if err := telegram.PublishCommands(ctx, tg, commands); err != nil {
			log.Warn("Could not publish Telegram command menu", "error", err)
		}
		listener = tg
		notifier = telegram.NewNotifier(tg, log)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Insights: ins,
		Notifier: notifier,
	}), gocron.WithLogger(logger.GocronLogger(log.With("component", "gocron"))))
	if err != nil {
		return err
	}

	return bot.NewBot(log, srv, sched, listener).Run(ctx)
}
