// Package app wires the planner and the shopping list to the signed-in
// user. Every front-end (HTTP, Telegram, CLI) goes through an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"planifia/internal/ingredients"
	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/session"
	"planifia/internal/shopping"
)

// Workspace is what a signed-in user works with. It is created on sign-in
// and dropped on sign-out.
type Workspace struct {
	Session  session.Session
	Planner  *planner.Planner
	Shopping *shopping.List
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the clock handed to each planner.
func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(a *App) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithMetrics shares a metrics store, e.g. the one the resolver records to.
func WithMetrics(store *metrics.Store) Option {
	return func(a *App) {
		if store != nil {
			a.metrics = store
		}
	}
}

// WithLogger sets the application logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// App holds the application's dependencies.
type App struct {
	sessions *session.Manager
	meals    *planner.MealRepository
	items    *shopping.Repository
	metrics  *metrics.Store
	resolver ingredients.Resolver
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger

	mu        sync.Mutex
	workspace *Workspace
	nonce     string
}

// NewApp creates an App over db. resolver may be nil, in which case meals
// never generate shopping items.
func NewApp(db *sqlx.DB, resolver ingredients.Resolver, opts ...Option) *App {
	a := &App{
		sessions: session.NewManager(session.NewRepository(db)),
		meals:    planner.NewMealRepository(db),
		items:    shopping.NewRepository(db),
		metrics:  metrics.NewStore(db),
		resolver: resolver,
		now:      time.Now,
		loc:      time.Local,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Metrics returns the metrics store.
func (a *App) Metrics() *metrics.Store {
	return a.metrics
}

// SignIn replaces the current session and returns the new workspace.
func (a *App) SignIn(ctx context.Context, email string) (*Workspace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.sessions.SignIn(ctx, email)
	if err != nil {
		return nil, err
	}
	a.teardown()
	a.workspace = a.newWorkspace(*s)
	a.nonce = s.Nonce
	a.logger.Info("signed in", zap.String("user_id", s.ID), zap.String("email", s.Email))
	return a.workspace, nil
}

// SignOut destroys the session and drops the workspace.
func (a *App) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	a.teardown()
	a.logger.Info("signed out")
	return nil
}

// Session returns the persisted session, or session.ErrNoSession.
func (a *App) Session(ctx context.Context) (*session.Session, error) {
	return a.sessions.Current(ctx)
}

// Workspace returns the workspace of the persisted session, building it
// after a restart or when another process signed in again.
func (a *App) Workspace(ctx context.Context) (*Workspace, error) {
	s, err := a.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.workspace != nil && a.nonce == s.Nonce {
		return a.workspace, nil
	}
	a.teardown()
	a.workspace = a.newWorkspace(*s)
	a.nonce = s.Nonce
	return a.workspace, nil
}

// IsNoSession reports whether err means nobody is signed in.
func IsNoSession(err error) bool {
	return errors.Is(err, session.ErrNoSession)
}

func (a *App) newWorkspace(s session.Session) *Workspace {
	logger := a.logger.With(zap.String("email", s.Email))
	return &Workspace{
		Session: s,
		Planner: planner.NewPlanner(s.ID, a.meals, a.items, a.resolver,
			planner.WithClock(a.now),
			planner.WithLocation(a.loc),
			planner.WithLogger(logger),
		),
		Shopping: shopping.NewList(s.ID, a.items, logger),
	}
}

func (a *App) teardown() {
	a.workspace = nil
	a.nonce = ""
}

// Usage returns a short report of the model usage of the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	usage, err := a.metrics.GetDailyUsage(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	return usage, nil
}
