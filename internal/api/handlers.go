// Package api provides HTTP handlers for MealNudge endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/push"
	"github.com/Forkful/MealNudge/internal/scheduler"
)

type mealReminderRequest struct {
	Category string `json:"category"`
	Time     string `json:"time"`
	Enabled  *bool  `json:"enabled"`
}

type scheduledMealRequest struct {
	ID         string `json:"id"`
	Recurrence string `json:"recurrence"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Label      string `json:"label"`
}

type workoutPlanRequest struct {
	DelaySeconds int `json:"delay_seconds"`
}

// mealReminderHandler handles POST /reminders/meal.
func (s *Server) mealReminderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.mealReminderHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.mealReminderHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mealReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.mealReminderHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	category := models.MealCategory(req.Category)
	if !models.IsValidMealCategory(category) {
		slog.Warn("Server.mealReminderHandler: invalid category", "category", req.Category)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid meal category"))
		return
	}
	// Enabled defaults to true when omitted.
	enabled := req.Enabled == nil || *req.Enabled
	at := scheduler.ParseClock(req.Time)

	if err := s.sched.ScheduleMealReminder(r.Context(), category, at, enabled); err != nil {
		slog.Error("Server.mealReminderHandler: failed to schedule reminder", "error", err, "category", category)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to schedule reminder"))
		return
	}
	slog.Info("Server.mealReminderHandler: reminder scheduled", "category", category, "at", at, "enabled", enabled)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Reminder scheduled", models.MealReminderIdentifier(category)))
}

// scheduledMealHandler handles POST /reminders/scheduled.
func (s *Server) scheduledMealHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.scheduledMealHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.scheduledMealHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req scheduledMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.scheduledMealHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	recurrence := models.RecurrenceNone
	if req.Recurrence == string(models.RecurrenceDaily) {
		recurrence = models.RecurrenceDaily
	}
	targetDate := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			slog.Warn("Server.scheduledMealHandler: invalid date", "date", req.Date, "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid date, expected YYYY-MM-DD"))
			return
		}
		targetDate = parsed
	}

	err := s.sched.ScheduleScheduledMeal(r.Context(), req.ID, recurrence, targetDate, req.Time, req.Label)
	if err != nil {
		slog.Warn("Server.scheduledMealHandler: failed to schedule meal", "error", err, "id", req.ID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	slog.Info("Server.scheduledMealHandler: scheduled meal registered", "id", req.ID, "recurrence", recurrence)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Scheduled meal registered", models.ScheduledMealIdentifier(req.ID)))
}

// remindersHandler handles GET /reminders and DELETE /reminders/{identifier}.
func (s *Server) remindersHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.remindersHandler: processing request", "method", r.Method, "path", r.URL.Path)
	switch r.Method {
	case http.MethodGet:
		s.listRemindersHandler(w, r)
	case http.MethodDelete:
		s.cancelReminderHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		slog.Warn("Server.remindersHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listRemindersHandler(w http.ResponseWriter, r *http.Request) {
	pending := s.center.Pending()
	delivered := s.center.Delivered()
	slog.Debug("Server.listRemindersHandler: reminders fetched", "pending", len(pending), "delivered", len(delivered))
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"pending":   pending,
		"delivered": delivered,
	}))
}

func (s *Server) cancelReminderHandler(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimPrefix(r.URL.Path, "/reminders")
	identifier = strings.TrimPrefix(identifier, "/")
	if identifier == "" {
		slog.Warn("Server.cancelReminderHandler: missing identifier", "path", r.URL.Path)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing reminder identifier"))
		return
	}
	if r.URL.Query().Get("delivered") == "true" {
		s.sched.Cancel(identifier)
	} else {
		s.center.RemovePending(identifier)
	}
	slog.Info("Server.cancelReminderHandler: reminder cancelled", "identifier", identifier)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Reminder cancelled", identifier))
}

// pushHandler handles POST /push. Payloads that do not carry the
// activity route are acknowledged and ignored.
func (s *Server) pushHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.pushHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.pushHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload push.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Server.pushHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	evt, ok := push.Route(payload)
	if !ok {
		slog.Debug("Server.pushHandler: payload ignored", "route", payload[models.PushFieldRoute])
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Event ignored", nil))
		return
	}
	s.bus.Publish(evt)
	slog.Info("Server.pushHandler: activity event routed", "event_id", evt.ID, "burned", evt.Burned)
	writeJSONResponse(w, http.StatusAccepted, models.SuccessWithMessage("Event routed", evt.ID))
}

// workoutPlanHandler handles POST /notifications/workout-plan.
func (s *Server) workoutPlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.workoutPlanHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.workoutPlanHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req workoutPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.workoutPlanHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.sched.ScheduleWorkoutPlan(r.Context(), req.DelaySeconds); err != nil {
		slog.Error("Server.workoutPlanHandler: failed to schedule", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to schedule workout plan notification"))
		return
	}
	slog.Info("Server.workoutPlanHandler: workout plan notification scheduled", "delay_seconds", req.DelaySeconds)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Workout plan notification scheduled", models.WorkoutPlanIdentifier))
}

// quietHoursHandler handles GET and PUT /settings/quiet-hours.
func (s *Server) quietHoursHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.quietHoursHandler: processing request", "method", r.Method, "path", r.URL.Path)
	switch r.Method {
	case http.MethodGet:
		settings, err := s.repo.GetQuietHours()
		if err != nil {
			slog.Error("Server.quietHoursHandler: failed to load settings", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load quiet hours"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(settings))
	case http.MethodPut:
		var settings models.QuietHoursSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			slog.Warn("Server.quietHoursHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if err := settings.Start.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid quiet hours start"))
			return
		}
		if err := settings.End.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid quiet hours end"))
			return
		}
		if err := s.repo.SetQuietHours(settings); err != nil {
			slog.Error("Server.quietHoursHandler: failed to save settings", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save quiet hours"))
			return
		}
		slog.Info("Server.quietHoursHandler: quiet hours updated", "enabled", settings.Enabled, "start", settings.Start, "end", settings.End)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Quiet hours updated", settings))
	default:
		w.Header().Set("Allow", "GET, PUT")
		slog.Warn("Server.quietHoursHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// authorizationHandler handles POST /authorization.
func (s *Server) authorizationHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.authorizationHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.authorizationHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authorized, err := s.gate.EnsureAuthorized(r.Context())
	if err != nil {
		slog.Error("Server.authorizationHandler: authorization request failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Authorization request failed"))
		return
	}
	state := s.gate.Status()
	slog.Info("Server.authorizationHandler: authorization resolved", "authorized", authorized, "state", state)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"authorized": authorized,
		"state":      state,
	}))
}

// healthHandler provides a health check endpoint.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"pending":   len(s.center.Pending()),
	})
}
