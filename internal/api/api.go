// Package api exposes the MealNudge reminder engine over HTTP.
//
// It wires the store, notification center, scheduler, authorization gate
// and push router together and serves RESTful endpoints for meal
// reminders, scheduled meals, quiet hours and push event ingestion.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Forkful/MealNudge/internal/auth"
	"github.com/Forkful/MealNudge/internal/catalog"
	"github.com/Forkful/MealNudge/internal/messaging"
	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/notify"
	"github.com/Forkful/MealNudge/internal/push"
	"github.com/Forkful/MealNudge/internal/quiet"
	"github.com/Forkful/MealNudge/internal/rotation"
	"github.com/Forkful/MealNudge/internal/scheduler"
	"github.com/Forkful/MealNudge/internal/store"
	"github.com/Forkful/MealNudge/internal/twiliosms"
	"github.com/Forkful/MealNudge/internal/whatsapp"
)

// Default server settings.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
)

// Notification channel names accepted by WithChannel.
const (
	ChannelConsole  = "console"
	ChannelTwilio   = "twilio"
	ChannelWhatsApp = "whatsapp"
)

// Opts holds configuration for the API server.
type Opts struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// Channel selects the delivery sink (console, twilio, whatsapp).
	Channel string
	// Recipient is the destination number for twilio and whatsapp sinks.
	Recipient string
}

// Option configures API server options.
type Option func(*Opts)

// WithAddr overrides the default listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithChannel selects the delivery sink by name.
func WithChannel(channel string) Option {
	return func(o *Opts) { o.Channel = channel }
}

// WithRecipient sets the delivery recipient for phone-based sinks.
func WithRecipient(recipient string) Option {
	return func(o *Opts) { o.Recipient = recipient }
}

// Server bundles the engine components behind the HTTP handlers.
type Server struct {
	repo   store.Store
	center notify.Center
	sched  *scheduler.Scheduler
	gate   *auth.Gate
	bus    *push.Bus
}

// NewServer creates a Server around already-constructed components.
func NewServer(repo store.Store, center notify.Center, sched *scheduler.Scheduler, gate *auth.Gate, bus *push.Bus) *Server {
	return &Server{repo: repo, center: center, sched: sched, gate: gate, bus: bus}
}

// Handler returns the routing mux for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/reminders", s.remindersHandler)
	mux.HandleFunc("/reminders/", s.remindersHandler)
	mux.HandleFunc("/reminders/meal", s.mealReminderHandler)
	mux.HandleFunc("/reminders/scheduled", s.scheduledMealHandler)
	mux.HandleFunc("/push", s.pushHandler)
	mux.HandleFunc("/notifications/workout-plan", s.workoutPlanHandler)
	mux.HandleFunc("/settings/quiet-hours", s.quietHoursHandler)
	mux.HandleFunc("/authorization", s.authorizationHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run builds the full engine from options and serves HTTP until the
// process receives SIGINT or SIGTERM.
func Run(storeOpts []store.Option, notifyOpts []notify.Option, apiOpts ...Option) error {
	cfg := Opts{Addr: DefaultAddr, Channel: ChannelConsole}
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	repo, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer repo.Close()

	sink, err := buildSink(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize delivery sink: %w", err)
	}
	if err := sink.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start delivery sink: %w", err)
	}
	defer sink.Stop()

	// Interruption level is resolved at fire time from the persisted
	// quiet-hours settings, so a settings change applies to timers that
	// were armed before it.
	levelFn := func(now time.Time) models.InterruptionLevel {
		settings, err := repo.GetQuietHours()
		if err != nil {
			slog.Error("api.Run: failed to load quiet hours, defaulting to active", "error", err)
			return models.InterruptionActive
		}
		return quiet.Level(now, settings)
	}

	center := notify.NewLocalCenter(repo, sink, levelFn, notifyOpts...)
	defer center.Stop()
	if err := center.Restore(); err != nil {
		slog.Error("api.Run: failed to restore pending notifications", "error", err)
	}

	gate := auth.NewGate(repo, center)
	sched := scheduler.New(center, rotation.New(repo), gate)
	bus := push.NewBus(push.DefaultBusBuffer)
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go consumeActivityEvents(ctx, bus, sched)

	srv := NewServer(repo, center, sched, gate, bus)
	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  DefaultRequestTimeout,
		WriteTimeout: DefaultRequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api.Run: HTTP server listening", "addr", cfg.Addr, "channel", cfg.Channel)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("api.Run: shutdown signal received")
	case serveErr := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}

func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("api.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	switch store.DetectDSNType(cfg.DSN) {
	case "postgres":
		return store.NewPostgresStore(storeOpts...)
	default:
		return store.NewSQLiteStore(storeOpts...)
	}
}

func buildSink(cfg Opts) (messaging.Service, error) {
	switch cfg.Channel {
	case ChannelTwilio:
		client, err := twiliosms.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create Twilio client: %w", err)
		}
		return messaging.NewTwilioService(client, cfg.Recipient)
	case ChannelWhatsApp:
		client, err := whatsapp.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		return messaging.NewWhatsAppService(client, cfg.Recipient)
	case ChannelConsole, "":
		return messaging.NewConsoleService(), nil
	default:
		return nil, fmt.Errorf("unknown notification channel: %s", cfg.Channel)
	}
}

// consumeActivityEvents drains routed push events into activity-burn
// notifications until the context is cancelled.
func consumeActivityEvents(ctx context.Context, bus *push.Bus, sched *scheduler.Scheduler) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-bus.Events():
			if !ok {
				return
			}
			vals := catalog.ActivityValues{
				Burned:       evt.Burned,
				Activity:     evt.Activity,
				Duration:     evt.Duration,
				CaloriesLeft: evt.CaloriesLeft,
			}
			if err := sched.NotifyActivityBurn(ctx, vals); err != nil {
				slog.Error("api.consumeActivityEvents: failed to schedule activity notification", "error", err, "event_id", evt.ID)
			}
		}
	}
}
