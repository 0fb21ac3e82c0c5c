// Package postgres implements the storage interfaces over PostgreSQL. Rows
// travel through package-local structs with db tags; calendar dates are date
// columns cast to text on the way out so the rest of the system only ever
// sees YYYY-MM-DD strings.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/goal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/habit"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/journal"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/domain/user"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
)

// Store implements every storage interface against one database handle.
type Store struct {
	db *sqlx.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.HabitStore = (*Store)(nil)
var _ storage.GoalStore = (*Store)(nil)
var _ storage.JournalStore = (*Store)(nil)

// New wraps the given handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Ping reports database reachability for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- users -------------------------------------------------------------------

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	row := userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at)
	`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, storage.ErrDuplicateUsername
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return user.User{}, err
	}
	return row.toDomain(), nil
}

// --- habits ------------------------------------------------------------------

type habitRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Frequency string    `db:"frequency"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r habitRow) toDomain() habit.Habit {
	return habit.Habit{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Category:  r.Category,
		Frequency: r.Frequency,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const habitColumns = `id, user_id, name, category, frequency, created_at, updated_at`

func (s *Store) CreateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, name, category, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, h.ID, h.UserID, h.Name, h.Category, h.Frequency, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return habit.Habit{}, err
	}
	return h, nil
}

func (s *Store) UpdateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	h.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits
		SET name = $2, category = $3, frequency = $4, updated_at = $5
		WHERE id = $1
	`, h.ID, h.Name, h.Category, h.Frequency, h.UpdatedAt)
	if err != nil {
		return habit.Habit{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return habit.Habit{}, sql.ErrNoRows
	}
	return s.GetHabit(ctx, h.ID)
}

func (s *Store) GetHabit(ctx context.Context, id string) (habit.Habit, error) {
	var row habitRow
	err := s.db.GetContext(ctx, &row, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)
	if err != nil {
		return habit.Habit{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListHabits(ctx context.Context, userID string, filter storage.HabitFilter) ([]habit.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Frequency != "" {
		args = append(args, filter.Frequency)
		query += fmt.Sprintf(" AND frequency = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	query += " ORDER BY " + habitOrdering(filter.Ordering)

	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]habit.Habit, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// habitOrdering whitelists order-by clauses; anything unrecognized falls back
// to newest first.
func habitOrdering(ordering string) string {
	switch ordering {
	case "name":
		return "name ASC"
	case "-name":
		return "name DESC"
	case "created_at":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

// DeleteHabit relies on ON DELETE CASCADE for the habit's logs.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- habit logs ----------------------------------------------------------

type habitLogRow struct {
	ID        string    `db:"id"`
	HabitID   string    `db:"habit_id"`
	UserID    string    `db:"user_id"`
	Date      string    `db:"date"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

func (r habitLogRow) toDomain() habit.Log {
	return habit.Log{
		ID:        r.ID,
		HabitID:   r.HabitID,
		UserID:    r.UserID,
		Date:      r.Date,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

const habitLogColumns = `id, habit_id, user_id, date::text AS date, note, created_at`

func (s *Store) CreateHabitLog(ctx context.Context, l habit.Log) (habit.Log, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_logs (id, habit_id, user_id, date, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.HabitID, l.UserID, l.Date, l.Note, l.CreatedAt)
	if err != nil {
		return habit.Log{}, err
	}
	return l, nil
}

func (s *Store) GetHabitLog(ctx context.Context, id string) (habit.Log, error) {
	var row habitLogRow
	err := s.db.GetContext(ctx, &row, `SELECT `+habitLogColumns+` FROM habit_logs WHERE id = $1`, id)
	if err != nil {
		return habit.Log{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListHabitLogs(ctx context.Context, userID string, filter storage.LogFilter) ([]habit.Log, error) {
	query := `SELECT ` + habitLogColumns + ` FROM habit_logs WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.HabitID != "" {
		args = append(args, filter.HabitID)
		query += fmt.Sprintf(" AND habit_id = $%d", len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"

	var rows []habitLogRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]habit.Log, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

func (s *Store) DeleteHabitLog(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habit_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- goals ---------------------------------------------------------------

type goalRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Category     string         `db:"category"`
	Unit         string         `db:"unit"`
	TargetValue  float64        `db:"target_value"`
	CurrentValue float64        `db:"current_value"`
	StartDate    sql.NullString `db:"start_date"`
	EndDate      sql.NullString `db:"end_date"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r goalRow) toDomain() goal.Goal {
	return goal.Goal{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Unit:         r.Unit,
		TargetValue:  r.TargetValue,
		CurrentValue: r.CurrentValue,
		StartDate:    r.StartDate.String,
		EndDate:      r.EndDate.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func nullDate(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const goalColumns = `id, user_id, name, description, category, unit, target_value, current_value,
	start_date::text AS start_date, end_date::text AS end_date, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, description, category, unit, target_value, current_value,
			start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, g.ID, g.UserID, g.Name, g.Description, g.Category, g.Unit, g.TargetValue, g.CurrentValue,
		nullDate(g.StartDate), nullDate(g.EndDate), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return goal.Goal{}, err
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	g.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE goals
		SET name = $2, description = $3, category = $4, unit = $5, target_value = $6,
			current_value = $7, start_date = $8, end_date = $9, updated_at = $10
		WHERE id = $1
	`, g.ID, g.Name, g.Description, g.Category, g.Unit, g.TargetValue,
		g.CurrentValue, nullDate(g.StartDate), nullDate(g.EndDate), g.UpdatedAt)
	if err != nil {
		return goal.Goal{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return goal.Goal{}, sql.ErrNoRows
	}
	return s.GetGoal(ctx, g.ID)
}

func (s *Store) GetGoal(ctx context.Context, id string) (goal.Goal, error) {
	var row goalRow
	err := s.db.GetContext(ctx, &row, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	if err != nil {
		return goal.Goal{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListGoals(ctx context.Context, userID string, filter storage.GoalFilter) ([]goal.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.ActiveOn != "" {
		args = append(args, filter.ActiveOn)
		query += fmt.Sprintf(" AND (end_date IS NULL OR end_date >= $%d)", len(args))
	}
	query += " ORDER BY created_at DESC"

	var rows []goalRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]goal.Goal, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// DeleteGoal relies on ON DELETE CASCADE for the goal's ledger.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- goal progress ---------------------------------------------------------

type progressRow struct {
	ID        string    `db:"id"`
	GoalID    string    `db:"goal_id"`
	UserID    string    `db:"user_id"`
	Date      string    `db:"date"`
	Amount    float64   `db:"amount"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

func (r progressRow) toDomain() goal.Progress {
	return goal.Progress{
		ID:        r.ID,
		GoalID:    r.GoalID,
		UserID:    r.UserID,
		Date:      r.Date,
		Amount:    r.Amount,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

const progressColumns = `id, goal_id, user_id, date::text AS date, amount, note, created_at`

func (s *Store) CreateGoalProgress(ctx context.Context, p goal.Progress) (goal.Progress, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goal_progress (id, goal_id, user_id, date, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.GoalID, p.UserID, p.Date, p.Amount, p.Note, p.CreatedAt)
	if err != nil {
		return goal.Progress{}, err
	}
	return p, nil
}

func (s *Store) GetGoalProgress(ctx context.Context, id string) (goal.Progress, error) {
	var row progressRow
	err := s.db.GetContext(ctx, &row, `SELECT `+progressColumns+` FROM goal_progress WHERE id = $1`, id)
	if err != nil {
		return goal.Progress{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListGoalProgress(ctx context.Context, userID string, filter storage.ProgressFilter) ([]goal.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM goal_progress WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.GoalID != "" {
		args = append(args, filter.GoalID)
		query += fmt.Sprintf(" AND goal_id = $%d", len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"

	var rows []progressRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]goal.Progress, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

func (s *Store) DeleteGoalProgress(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goal_progress WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- journal entries ---------------------------------------------------------

type entryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Date      string    `db:"date"`
	Time      string    `db:"time"`
	EntryType string    `db:"entry_type"`
	Mood      string    `db:"mood"`
	Content   string    `db:"content"`
	Responses []byte    `db:"responses"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r entryRow) toDomain() (journal.Entry, error) {
	e := journal.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Time:      r.Time,
		EntryType: r.EntryType,
		Mood:      r.Mood,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Responses) > 0 {
		if err := json.Unmarshal(r.Responses, &e.Responses); err != nil {
			return journal.Entry{}, fmt.Errorf("decode responses for entry %s: %w", r.ID, err)
		}
	}
	return e, nil
}

func marshalResponses(responses map[string]string) ([]byte, error) {
	if len(responses) == 0 {
		return nil, nil
	}
	return json.Marshal(responses)
}

const entryColumns = `id, user_id, date::text AS date, time::text AS time, entry_type, mood,
	content, responses, created_at, updated_at`

func (s *Store) CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	responses, err := marshalResponses(e.Responses)
	if err != nil {
		return journal.Entry{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, date, time, entry_type, mood, content, responses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.UserID, e.Date, e.Time, e.EntryType, e.Mood, e.Content, responses, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	e.UpdatedAt = time.Now().UTC()
	responses, err := marshalResponses(e.Responses)
	if err != nil {
		return journal.Entry{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries
		SET date = $2, time = $3, entry_type = $4, mood = $5, content = $6, responses = $7, updated_at = $8
		WHERE id = $1
	`, e.ID, e.Date, e.Time, e.EntryType, e.Mood, e.Content, responses, e.UpdatedAt)
	if err != nil {
		return journal.Entry{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return journal.Entry{}, sql.ErrNoRows
	}
	return s.GetEntry(ctx, e.ID)
}

func (s *Store) GetEntry(ctx context.Context, id string) (journal.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return journal.Entry{}, err
	}
	return row.toDomain()
}

func (s *Store) ListEntries(ctx context.Context, userID string, filter storage.EntryFilter) ([]journal.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Mood != "" {
		args = append(args, filter.Mood)
		query += fmt.Sprintf(" AND mood = $%d", len(args))
	}
	if filter.EntryType != "" {
		args = append(args, filter.EntryType)
		query += fmt.Sprintf(" AND entry_type = $%d", len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND (content ILIKE $%d OR responses::text ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY date DESC, time DESC"

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]journal.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
