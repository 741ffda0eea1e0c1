package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"

	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/session"
	"planifia/internal/shopping"
)

type signInRequest struct {
	Email string `json:"email"`
}

type signInResponse struct {
	Session session.Session `json:"session"`
	Token   string          `json:"token"`
}

type saveMealResponse struct {
	Saved bool `json:"saved"`
	*planner.SaveResult
}

type addItemRequest struct {
	Name string `json:"name"`
}

type addItemResponse struct {
	Saved bool           `json:"saved"`
	Item  *shopping.Item `json:"item,omitempty"`
}

type weekPlanResponse struct {
	WeekOffset int               `json:"week_offset"`
	Days       []planner.DayPlan `json:"days"`
}

type eligibilityResponse struct {
	Date                    string `json:"date"`
	WillGenerateIngredients bool   `json:"will_generate_ingredients"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	System  metrics.SysHealth `json:"system"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "planifia",
		System:  metrics.GetSysHealth(h.dataDir),
	})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	ws, err := h.app.SignIn(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, session.ErrInvalidEmail) {
			writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Email is required"))
			return
		}
		h.logRequest(r, zap.ErrorLevel, "Sign-in failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to sign in"))
		return
	}

	token, err := h.tokens.Issue(ws.Session)
	if err != nil {
		h.logRequest(r, zap.ErrorLevel, "Token signing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to sign in"))
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{Session: ws.Session, Token: token})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workspaceFrom(r.Context()).Session)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SignOut(r.Context()); err != nil {
		h.logRequest(r, zap.ErrorLevel, "Sign-out failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to sign out"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) weekPlan(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid week"))
			return
		}
		offset = n
	}

	days, err := workspaceFrom(r.Context()).Planner.WeekPlan(r.Context(), offset)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidWeekOffset) {
			writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Week must be 0 or 1"))
			return
		}
		h.logRequest(r, zap.ErrorLevel, "Failed to load week plan", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to load meals"))
		return
	}
	writeJSON(w, http.StatusOK, weekPlanResponse{WeekOffset: offset, Days: days})
}

func (h *Handler) saveMeal(w http.ResponseWriter, r *http.Request) {
	var req planner.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	res, err := workspaceFrom(r.Context()).Planner.SaveMeal(r.Context(), req)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidMealType) || errors.Is(err, planner.ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
			return
		}
		h.logRequest(r, zap.ErrorLevel, "Failed to save meal", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to save meal"))
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, saveMealResponse{Saved: false})
		return
	}

	h.logRequest(r, zap.InfoLevel, "Meal saved",
		zap.String("meal_id", res.Meal.ID),
		zap.Bool("eligible", res.Eligible),
		zap.Int("items", len(res.Items)),
	)
	writeJSON(w, http.StatusCreated, saveMealResponse{Saved: true, SaveResult: res})
}

func (h *Handler) eligibility(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	ok, err := workspaceFrom(r.Context()).Planner.WillGenerateIngredients(date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, eligibilityResponse{Date: date, WillGenerateIngredients: ok})
}

func (h *Handler) deleteMeal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := workspaceFrom(r.Context()).Planner.DeleteMeal(r.Context(), id); err != nil {
		h.logRequest(r, zap.ErrorLevel, "Failed to delete meal", zap.String("meal_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to delete meal"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shoppingList(w http.ResponseWriter, r *http.Request) {
	summary, err := workspaceFrom(r.Context()).Shopping.Refresh(r.Context())
	if err != nil {
		h.logRequest(r, zap.ErrorLevel, "Failed to load shopping list", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to load shopping list"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	item, err := workspaceFrom(r.Context()).Shopping.AddManualItem(r.Context(), req.Name)
	if err != nil {
		h.logRequest(r, zap.ErrorLevel, "Failed to add item", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to add item"))
		return
	}
	if item == nil {
		writeJSON(w, http.StatusOK, addItemResponse{Saved: false})
		return
	}
	writeJSON(w, http.StatusCreated, addItemResponse{Saved: true, Item: item})
}

func (h *Handler) toggleGroup(w http.ResponseWriter, r *http.Request) {
	h.withGroup(w, r, func(list *shopping.List, group shopping.GroupedItem) error {
		return list.TogglePurchased(r.Context(), group)
	})
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	h.withGroup(w, r, func(list *shopping.List, group shopping.GroupedItem) error {
		return list.DeleteGroup(r.Context(), group)
	})
}

// withGroup looks up the group named in the path, runs op on it and
// responds with the refreshed list.
func (h *Handler) withGroup(w http.ResponseWriter, r *http.Request, op func(*shopping.List, shopping.GroupedItem) error) {
	name := mux.Vars(r)["name"]
	list := workspaceFrom(r.Context()).Shopping

	group, err := list.Group(r.Context(), name)
	if err != nil {
		if errors.Is(err, shopping.ErrGroupNotFound) {
			writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Shopping item not found"))
			return
		}
		h.logRequest(r, zap.ErrorLevel, "Failed to load shopping list", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to load shopping list"))
		return
	}

	if err := op(list, group); err != nil {
		h.logRequest(r, zap.ErrorLevel, "Shopping update failed", zap.String("group", group.Key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to update shopping list"))
		return
	}
	writeJSON(w, http.StatusOK, list.Summary())
}
