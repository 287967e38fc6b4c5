package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/config"
	"github.com/emilian8/crew-call-frontend/internal/duty"
	"github.com/emilian8/crew-call-frontend/internal/event"
	"github.com/emilian8/crew-call-frontend/internal/notify"
	"github.com/emilian8/crew-call-frontend/internal/session"
	"github.com/emilian8/crew-call-frontend/internal/store"
	"github.com/emilian8/crew-call-frontend/internal/template"
)

// App is the assembled cache stack a command operates on.
type App struct {
	Session       *session.Cache
	Events        *event.Cache
	Duties        *duty.Cache
	Templates     *template.Cache
	Notifications *notify.Cache

	store *store.Store
}

// Assemble wires the transport and every cache together. The client is
// built through makeClient so callers control the base URL; the
// credential source hands out whatever token the session holds at call
// time. All caches register as actor sinks, and a persisted identity is
// restored before the App is returned.
func Assemble(makeClient func(api.CredentialSource) (*api.Client, error), creds session.Credentials, logger *slog.Logger) (*App, error) {
	var sess *session.Cache
	client, err := makeClient(api.CredentialFunc(func() (string, bool) {
		if sess == nil {
			return "", false
		}
		return sess.Credential()
	}))
	if err != nil {
		return nil, err
	}

	sess = session.New(client, creds, logger)
	app := &App{
		Session:       sess,
		Events:        event.New(client, logger),
		Duties:        duty.New(client, logger),
		Templates:     template.New(client, logger),
		Notifications: notify.New(client, logger),
	}
	sess.RegisterSink(app.Events)
	sess.RegisterSink(app.Duties)
	sess.RegisterSink(app.Templates)
	sess.RegisterSink(app.Notifications)
	// A fresh login kicks off the initial event load; a failure there is
	// the event cache's to report, not the login's.
	sess.SetAfterLogin(func(ctx context.Context) {
		_ = app.Events.LoadMine(ctx)
	})
	sess.Restore()
	return app, nil
}

// NewApp assembles an App backed by the on-disk credential store from
// cfg. Close releases the store.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	app, err := Assemble(func(creds api.CredentialSource) (*api.Client, error) {
		return api.NewClient(api.ClientConfig{
			BaseURL:     cfg.APIBaseURL,
			Credentials: creds,
			Logger:      logger,
		})
	}, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	app.store = st
	return app, nil
}

// Close releases the credential store, if this App owns one.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
