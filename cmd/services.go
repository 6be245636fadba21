package cmd

import (
	"fmt"
	"log/slog"

	app "daybook/internal"
	"daybook/internal/activity"
	"daybook/internal/attendance"
	"daybook/internal/config"
	"daybook/internal/integrations/googlecal"
	"daybook/internal/journal"
	"daybook/internal/jwt"
	"daybook/internal/report"
	"daybook/internal/settings"
	"daybook/internal/storage"
	"daybook/internal/throttle"
	"daybook/internal/todos"
	"daybook/internal/tokencrypt"
)

// domain holds the services every command shares.
type domain struct {
	Activity *activity.Service
	Tracker  *attendance.Tracker
	Todos    *todos.Service
	Journal  *journal.Service
	Settings *settings.Service

	closers []func() error
}

func (d *domain) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

func (d *domain) Reports() *report.Builder {
	return report.NewBuilder(d.Tracker, d.Todos, d.Journal, d.Activity)
}

func newDomain(cfg *config.Config, store storage.Provider) *domain {
	d := &domain{}

	var publisher activity.Publisher
	if cfg.Events.AMQPURL != "" {
		p, err := activity.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			slog.Warn("Activity fan-out disabled", "error", err)
		} else {
			publisher = p
			d.closers = append(d.closers, p.Close)
		}
	}

	d.Activity = activity.NewService(store, publisher)
	d.Tracker = attendance.NewTracker(store, d.Activity)
	d.Todos = todos.NewService(store, d.Activity)
	d.Journal = journal.NewService(store, d.Activity)
	d.Settings = settings.NewService(store)
	return d
}

func newCalendarManager(cfg *config.Config, store storage.Provider, recorder activity.Recorder) (*googlecal.Manager, error) {
	if !cfg.Integrations.GoogleEnabled() {
		return nil, nil
	}

	cipher, err := tokencrypt.New(cfg.Integrations.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("integrations.encryption_key: %w", err)
	}
	signer, err := jwt.NewStateSigner(cfg.Secret, cfg.Integrations.StateTTL)
	if err != nil {
		return nil, err
	}

	provider := googlecal.NewGoogleProvider(cfg.Integrations.Google)
	return googlecal.NewManager(provider, store, signer, cipher, recorder, cfg.Integrations.ProviderTimeout), nil
}

// newServices wires everything the HTTP server needs.
func newServices(cfg *config.Config, store storage.Provider, d *domain) (*app.Services, error) {
	calendar, err := newCalendarManager(cfg, store, d.Activity)
	if err != nil {
		return nil, err
	}

	limiter, err := throttle.NewStore(cfg.Throttle)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize throttle store: %w", err)
	}
	d.closers = append(d.closers, limiter.Close)

	return &app.Services{
		Storage:  store,
		Verifier: jwt.NewVerifier(cfg.Auth.Secret),
		Tracker:  d.Tracker,
		Todos:    d.Todos,
		Journal:  d.Journal,
		Activity: d.Activity,
		Settings: d.Settings,
		Calendar: calendar,
		Throttle: limiter,
	}, nil
}
