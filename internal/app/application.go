// Package app wires the domain services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/services/accounts"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/services/goals"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/services/habits"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/services/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage/memory"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/system"
	"github.com/jakehorton1228-droid/habit-tracker/internal/auth"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation.
type Stores struct {
	Users   storage.UserStore
	Habits  storage.HabitStore
	Goals   storage.GoalStore
	Journal storage.JournalStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Accounts *accounts.Service
	Habits   *habits.Service
	Goals    *goals.Service
	Journal  *journal.Service
}

// New builds a fully initialised application with the provided stores and
// token manager.
func New(stores Stores, tokens *auth.TokenManager, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Habits == nil {
		stores.Habits = mem
	}
	if stores.Goals == nil {
		stores.Goals = mem
	}
	if stores.Journal == nil {
		stores.Journal = mem
	}

	manager := system.NewManager()
	for _, name := range []string{"accounts", "habits", "goals", "journal"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:  manager,
		log:      log,
		Accounts: accounts.New(stores.Users, tokens, log),
		Habits:   habits.New(stores.Habits, log),
		Goals:    goals.New(stores.Goals, log),
		Journal:  journal.New(stores.Journal, log),
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
