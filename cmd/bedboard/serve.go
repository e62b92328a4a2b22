package main

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmendes/bedboard/internal/alerts"
	"github.com/jmendes/bedboard/internal/alerts/discord"
	"github.com/jmendes/bedboard/internal/alerts/slack"
	"github.com/jmendes/bedboard/internal/api"
	"github.com/jmendes/bedboard/internal/auth"
	"github.com/jmendes/bedboard/internal/config"
	"github.com/jmendes/bedboard/internal/db"
	"github.com/jmendes/bedboard/internal/housekeeping"
	"github.com/jmendes/bedboard/internal/logging"
	"github.com/jmendes/bedboard/internal/ward"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bed management server",
		Long:  "Loads state from the database, starts the HTTP API with websocket/SSE push, the housekeeping sweep and staff alerting. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bedboard.yaml", "path to config file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync()

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seeded, err := db.SeedBeds(gormDB, cfg.Wards, rng)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.Info("seeded ward complement", zap.Int("beds", seeded))
	}

	beds, patients, err := db.LoadState(gormDB)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub(log)
	notifier := ward.Notifier(hub)

	dispatcher, err := newAlertDispatcher(cfg.Alerts, log)
	if err != nil {
		return err
	}
	if dispatcher != nil {
		notifier = ward.MultiNotifier{hub, dispatcher}
		go dispatcher.Run(ctx)
		log.Info("staff alerting enabled", zap.String("platform", cfg.Alerts.Platform))
	}

	reg := ward.New(ward.Opts{
		Sink:     db.NewSink(gormDB),
		Notifier: notifier,
		Log:      log,
	})
	reg.Load(beds, patients)
	bedCount, queued := reg.Counts()
	log.Info("registry loaded", zap.Int("beds", bedCount), zap.Int("queued", queued))

	if cfg.Housekeeping.Enabled {
		sweep, err := housekeeping.New(housekeeping.Opts{
			Sweeper:  reg,
			Schedule: cfg.Housekeeping.Schedule,
			Turnover: time.Duration(cfg.Housekeeping.TurnoverMinutes) * time.Minute,
			Log:      log,
		})
		if err != nil {
			return err
		}
		go sweep.Run(ctx)
		log.Info("housekeeping sweep enabled", zap.String("schedule", cfg.Housekeeping.Schedule))
	}

	svc, err := auth.New(cfg.Auth)
	if err != nil {
		return err
	}

	return api.Start(ctx, api.StartOpts{
		Registry: reg,
		Auth:     svc,
		Hub:      hub,
		Port:     cfg.Server.Port,
		Log:      log,
	})
}

// newAlertDispatcher builds the configured chat alert pipeline. Returns
// nil when alerting is not configured.
func newAlertDispatcher(cfg config.AlertsConfig, log *zap.Logger) (*alerts.Dispatcher, error) {
	var (
		adapter alerts.Adapter
		err     error
	)
	switch cfg.Platform {
	case "":
		return nil, nil
	case "slack":
		adapter, err = slack.New(slack.AdapterOpts{
			BotToken:  cfg.SlackToken,
			ChannelID: cfg.Channel,
		})
	case "discord":
		adapter, err = discord.New(discord.AdapterOpts{
			BotToken:  cfg.DiscordToken,
			ChannelID: cfg.Channel,
		})
	default:
		return nil, fmt.Errorf("unknown alert platform %q", cfg.Platform)
	}
	if err != nil {
		return nil, err
	}
	return alerts.NewDispatcher(adapter, log)
}
