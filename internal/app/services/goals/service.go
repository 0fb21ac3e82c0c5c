// Package goals manages measurable goals and their append-only progress
// ledgers.
package goals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/goal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
	"github.com/jakehorton1228-droid/habit-tracker/internal/streak"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

// Service manages goals scoped to their owner.
type Service struct {
	store storage.GoalStore
	log   *logger.Logger
}

// New constructs a goal service.
func New(store storage.GoalStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("goals")
	}
	return &Service{store: store, log: log}
}

// Params are the caller-settable goal fields.
type Params struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	TargetValue  float64 `json:"target_value"`
	CurrentValue float64 `json:"current_value"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

func validate(p Params) error {
	v := apperrors.NewValidation()
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "name is required")
	}
	if strings.TrimSpace(p.Unit) == "" {
		v.Add("unit", "unit is required")
	}
	if p.TargetValue <= 0 {
		v.Add("target_value", "target_value must be positive")
	}
	for field, date := range map[string]string{"start_date": p.StartDate, "end_date": p.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(streak.DateLayout, date); err != nil {
			v.Add(field, field+" must be YYYY-MM-DD")
		}
	}
	if p.StartDate != "" && p.EndDate != "" && p.StartDate > p.EndDate {
		v.Add("end_date", "end_date must not precede start_date")
	}
	return v.OrNil()
}

// Create adds a goal. Name, unit, and a positive target are required.
func (s *Service) Create(ctx context.Context, userID string, p Params) (goal.Goal, error) {
	if err := validate(p); err != nil {
		return goal.Goal{}, err
	}
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = "other"
	}

	created, err := s.store.CreateGoal(ctx, goal.Goal{
		UserID:       userID,
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Category:     category,
		Unit:         strings.TrimSpace(p.Unit),
		TargetValue:  p.TargetValue,
		CurrentValue: p.CurrentValue,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
	})
	if err != nil {
		return goal.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.log.WithField("goal_id", created.ID).WithField("user_id", userID).Info("goal created")
	return created, nil
}

// List returns the caller's goals.
func (s *Service) List(ctx context.Context, userID string, filter storage.GoalFilter) ([]goal.Goal, error) {
	return s.store.ListGoals(ctx, userID, filter)
}

// Get returns one goal, owner-scoped.
func (s *Service) Get(ctx context.Context, userID, id string) (goal.Goal, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return goal.Goal{}, apperrors.NotFound("goal")
		}
		return goal.Goal{}, err
	}
	if g.UserID != userID {
		return goal.Goal{}, apperrors.NotFound("goal")
	}
	return g, nil
}

// Update overwrites the caller-settable fields, including current_value: the
// running total can be set directly and is allowed to drift from the ledger.
func (s *Service) Update(ctx context.Context, userID, id string, p Params) (goal.Goal, error) {
	g, err := s.Get(ctx, userID, id)
	if err != nil {
		return goal.Goal{}, err
	}
	if err := validate(p); err != nil {
		return goal.Goal{}, err
	}

	g.Name = strings.TrimSpace(p.Name)
	g.Description = strings.TrimSpace(p.Description)
	if category := strings.TrimSpace(p.Category); category != "" {
		g.Category = category
	}
	g.Unit = strings.TrimSpace(p.Unit)
	g.TargetValue = p.TargetValue
	g.CurrentValue = p.CurrentValue
	g.StartDate = p.StartDate
	g.EndDate = p.EndDate

	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	s.log.WithField("goal_id", id).Info("goal updated")
	return updated, nil
}

// Delete removes a goal and, through the store, its ledger.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.log.WithField("goal_id", id).Info("goal deleted")
	return nil
}

// AddProgress appends a ledger entry and moves the goal's running total by
// the same amount. The entry date is server-assigned: ledger entries cannot
// be backdated. The two writes are not atomic across stores; a failure
// between them leaves the total behind the ledger, which the model already
// tolerates.
func (s *Service) AddProgress(ctx context.Context, userID, goalID string, amount float64, note string) (goal.Progress, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return goal.Progress{}, apperrors.NotFound("goal")
		}
		return goal.Progress{}, err
	}
	if g.UserID != userID {
		return goal.Progress{}, apperrors.ErrForbidden
	}
	if amount == 0 {
		return goal.Progress{}, apperrors.Validationf("amount", "amount must be non-zero")
	}

	created, err := s.store.CreateGoalProgress(ctx, goal.Progress{
		GoalID: goalID,
		UserID: userID,
		Date:   time.Now().Format(streak.DateLayout),
		Amount: amount,
		Note:   strings.TrimSpace(note),
	})
	if err != nil {
		return goal.Progress{}, fmt.Errorf("create goal progress: %w", err)
	}

	g.CurrentValue += amount
	if _, err := s.store.UpdateGoal(ctx, g); err != nil {
		return goal.Progress{}, fmt.Errorf("update goal total: %w", err)
	}

	s.log.WithField("goal_id", goalID).WithField("amount", amount).Info("goal progress recorded")
	return created, nil
}

// ListProgress returns the caller's ledger entries.
func (s *Service) ListProgress(ctx context.Context, userID string, filter storage.ProgressFilter) ([]goal.Progress, error) {
	return s.store.ListGoalProgress(ctx, userID, filter)
}

// GetProgress returns one ledger entry, owner-scoped.
func (s *Service) GetProgress(ctx context.Context, userID, id string) (goal.Progress, error) {
	p, err := s.store.GetGoalProgress(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return goal.Progress{}, apperrors.NotFound("goal progress")
		}
		return goal.Progress{}, err
	}
	if p.UserID != userID {
		return goal.Progress{}, apperrors.NotFound("goal progress")
	}
	return p, nil
}

// DeleteProgress removes a ledger entry without touching the goal's running
// total: the ledger is historical record, not the source of the total.
func (s *Service) DeleteProgress(ctx context.Context, userID, id string) error {
	if _, err := s.GetProgress(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteGoalProgress(ctx, id); err != nil {
		return fmt.Errorf("delete goal progress: %w", err)
	}
	s.log.WithField("progress_id", id).Info("goal progress removed")
	return nil
}
