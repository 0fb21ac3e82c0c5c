// Package httpapi exposes the application services as a REST API.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jakehorton1228-droid/habit-tracker/internal/app"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/metrics"
	"github.com/jakehorton1228-droid/habit-tracker/internal/app/storage"
	"github.com/jakehorton1228-droid/habit-tracker/internal/httputil"
	"github.com/jakehorton1228-droid/habit-tracker/internal/streak"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

// Pinger reports backend reachability for the health endpoint. The postgres
// store implements it; the memory store does not need to.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the operational details surfaced by /health.
type Options struct {
	ServiceName   string
	Version       string
	StorageDriver string
	DB            Pinger
	Log           *logger.Logger
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app     *app.Application
	opts    Options
	log     *logger.Logger
	started time.Time
}

// NewRouter returns a mux exposing the REST API plus the operational
// endpoints.
func NewRouter(application *app.Application, opts Options) *mux.Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "habit-tracker"
	}
	log := opts.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, opts: opts, log: log, started: time.Now()}

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	route(api, "/auth/register/", h.register, http.MethodPost)
	route(api, "/auth/login/", h.login, http.MethodPost)
	route(api, "/auth/token/refresh/", h.refresh, http.MethodPost)
	route(api, "/auth/user/", h.currentUser, http.MethodGet)

	// Fixed segments are registered before {id} routes so "stats" and
	// "logs" are not captured as IDs.
	route(api, "/habits/stats/", h.habitStats, http.MethodGet)
	route(api, "/habits/logs/", h.listLogs, http.MethodGet)
	route(api, "/habits/logs/", h.createLog, http.MethodPost)
	route(api, "/habits/logs/{id}/", h.getLog, http.MethodGet)
	route(api, "/habits/logs/{id}/", h.deleteLog, http.MethodDelete)
	route(api, "/habits/", h.listHabits, http.MethodGet)
	route(api, "/habits/", h.createHabit, http.MethodPost)
	route(api, "/habits/{id}/", h.getHabit, http.MethodGet)
	route(api, "/habits/{id}/", h.updateHabit, http.MethodPut)
	route(api, "/habits/{id}/", h.deleteHabit, http.MethodDelete)

	route(api, "/goals/progress/", h.listProgress, http.MethodGet)
	route(api, "/goals/progress/", h.addProgress, http.MethodPost)
	route(api, "/goals/progress/{id}/", h.getProgress, http.MethodGet)
	route(api, "/goals/progress/{id}/", h.deleteProgress, http.MethodDelete)
	route(api, "/goals/", h.listGoals, http.MethodGet)
	route(api, "/goals/", h.createGoal, http.MethodPost)
	route(api, "/goals/{id}/", h.getGoal, http.MethodGet)
	route(api, "/goals/{id}/", h.updateGoal, http.MethodPut)
	route(api, "/goals/{id}/", h.deleteGoal, http.MethodDelete)

	route(api, "/journal/stats/", h.journalStats, http.MethodGet)
	route(api, "/journal/", h.listEntries, http.MethodGet)
	route(api, "/journal/", h.createEntry, http.MethodPost)
	route(api, "/journal/{id}/", h.getEntry, http.MethodGet)
	route(api, "/journal/{id}/", h.updateEntry, http.MethodPut)
	route(api, "/journal/{id}/", h.deleteEntry, http.MethodDelete)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

// route registers path both with and without the trailing slash; the
// frontend posts the slashed form, curl users tend to drop it.
func route(r *mux.Router, path string, fn http.HandlerFunc, methods ...string) {
	r.HandleFunc(path, fn).Methods(methods...)
	r.HandleFunc(strings.TrimSuffix(path, "/"), fn).Methods(methods...)
}

func today() string {
	return time.Now().Format(streak.DateLayout)
}

// weekStart reads the viewer's week-start day from the query string.
func weekStart(r *http.Request) time.Weekday {
	return streak.ParseWeekStart(r.URL.Query().Get("week_start"))
}

// --- auth ---

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	u, err := h.app.Accounts.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	pair, err := h.app.Accounts.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Refresh string `json:"refresh"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	access, err := h.app.Accounts.Refresh(r.Context(), payload.Refresh)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	u, err := h.app.Accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

// --- habits ---

type habitPayload struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
}

func (h *handler) createHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload habitPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.app.Habits.Create(r.Context(), userID, payload.Name, payload.Category, payload.Frequency)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	habits, err := h.app.Habits.List(r.Context(), userID, storage.HabitFilter{
		Category:  q.Get("category"),
		Frequency: q.Get("frequency"),
		Search:    q.Get("search"),
		Ordering:  q.Get("ordering"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, habits)
}

func (h *handler) getHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	habit, err := h.app.Habits.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, habit)
}

func (h *handler) updateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload habitPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.app.Habits.Update(r.Context(), userID, mux.Vars(r)["id"], payload.Name, payload.Category, payload.Frequency)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	if err := h.app.Habits.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) habitStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	stats, err := h.app.Habits.Stats(r.Context(), userID, today(), weekStart(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *handler) createLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Habit string `json:"habit"`
		Date  string `json:"date"`
		Note  string `json:"note"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.app.Habits.LogCompletion(r.Context(), userID, payload.Habit, payload.Date, payload.Note)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	logs, err := h.app.Habits.ListLogs(r.Context(), userID, storage.LogFilter{
		HabitID:  q.Get("habit"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, logs)
}

func (h *handler) getLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	l, err := h.app.Habits.GetLog(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, l)
}

func (h *handler) deleteLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	if err := h.app.Habits.DeleteLog(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- goals ---

func (h *handler) createGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload goalsParams
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.app.Goals.Create(r.Context(), userID, payload.toParams())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := storage.GoalFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if q.Get("active") == "true" {
		filter.ActiveOn = today()
	}
	goals, err := h.app.Goals.List(r.Context(), userID, filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, goals)
}

func (h *handler) getGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	g, err := h.app.Goals.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload goalsParams
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.app.Goals.Update(r.Context(), userID, mux.Vars(r)["id"], payload.toParams())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	if err := h.app.Goals.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Goal   string  `json:"goal"`
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.app.Goals.AddProgress(r.Context(), userID, payload.Goal, payload.Amount, payload.Note)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	entries, err := h.app.Goals.ListProgress(r.Context(), userID, storage.ProgressFilter{
		GoalID:   q.Get("goal"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *handler) getProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	p, err := h.app.Goals.GetProgress(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	if err := h.app.Goals.DeleteProgress(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- journal ---

func (h *handler) createEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload journalParams
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	created, err := h.app.Journal.Create(r.Context(), userID, payload.toParams())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) listEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	entries, err := h.app.Journal.List(r.Context(), userID, storage.EntryFilter{
		Mood:      q.Get("mood"),
		EntryType: q.Get("entry_type"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		Search:    q.Get("search"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *handler) getEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	e, err := h.app.Journal.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	var payload journalParams
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.app.Journal.Update(r.Context(), userID, mux.Vars(r)["id"], payload.toParams())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	if err := h.app.Journal.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) journalStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}
	stats, err := h.app.Journal.Stats(r.Context(), userID, today(), weekStart(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
