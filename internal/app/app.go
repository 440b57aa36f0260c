package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/api"
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/session"
	"github.com/templui/folio/internal/store"
)

var ErrNoAuth = errors.New("the local backend has no sign-in")

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Client   *api.Client
	Store    *store.Store
	Markdown *markdown.Parser
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		Cfg:      cfg,
		Markdown: markdown.NewParser(),
	}

	var collab store.Collaborator
	switch cfg.Backend {
	case config.BackendLocal:
		database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.DB = database

		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		collab = LocalCollaborator(repository.NewBackend(database, cfg.PageSize))

	case config.BackendREST:
		client, err := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout), api.WithToken(cfg.APIToken))
		if err != nil {
			return nil, err
		}
		app.Client = client
		collab = RESTCollaborator(client)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	app.Store = store.New(collab, store.Options{
		PersistReorder: cfg.PersistReorder,
		SearchDebounce: cfg.SearchDebounce,
		SearchTimeout:  cfg.APITimeout,
	})

	if app.Client != nil && cfg.APIToken == "" && cfg.APIUsername != "" && cfg.APIPassword != "" {
		if _, err := app.Login(ctx, cfg.APIUsername, cfg.APIPassword); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to sign in as %s: %w", cfg.APIUsername, err)
		}
	}

	return app, nil
}

func RESTCollaborator(c *api.Client) store.Collaborator {
	return store.Collaborator{
		Goals:        c.Goals,
		Steps:        c.Steps,
		Projects:     c.Projects,
		Certificates: c.Certificates,
	}
}

func LocalCollaborator(b *repository.Backend) store.Collaborator {
	return store.Collaborator{
		Goals:        b.Goals,
		Steps:        b.Steps,
		Projects:     b.Projects,
		Certificates: b.Certificates,
	}
}

// Login signs in against the REST backend and points the store at an
// authenticated client.
func (a *App) Login(ctx context.Context, username, password string) (*session.Session, error) {
	if a.Client == nil {
		return nil, apierr.NotFound(ErrNoAuth.Error())
	}

	sess, err := a.Client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	a.Store.ClearSession()
	a.Store.Reconnect(RESTCollaborator(a.Client.WithSession(sess)))
	a.Store.SetSession(sess)
	slog.Info("signed in", "user", sess.User.Username, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// Logout drops the session and goes back to the unauthenticated client.
func (a *App) Logout() {
	a.Store.ClearSession()
	if a.Client != nil {
		a.Store.Reconnect(RESTCollaborator(a.Client))
	}
}

func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return db.Close(a.DB)
}
