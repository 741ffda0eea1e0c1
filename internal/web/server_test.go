package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"planifia/internal/app"
	"planifia/internal/database"
	"planifia/internal/session"
	"planifia/internal/shopping"
)

type MockResolver struct {
	names []string
}

func (m *MockResolver) Resolve(ctx context.Context, dishName string) ([]string, error) {
	return m.names, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	a := app.NewApp(db.SQL, &MockResolver{names: []string{"tomate", "pepino", "ajo"}},
		app.WithClock(func() time.Time { return now }),
		app.WithLocation(time.UTC),
	)
	h := NewHandler(a, session.NewTokens("test-secret"), WithDataDir(t.TempDir()))

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func signIn(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/session", "", signInRequest{Email: email})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on sign-in, got %d", resp.StatusCode)
	}
	return decode[signInResponse](t, resp).Token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if got := decode[healthResponse](t, resp); got.Status != "healthy" {
		t.Errorf("Unexpected health: %+v", got)
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t)

	if resp := do(t, srv, http.MethodGet, "/api/shopping", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, "/api/shopping", "garbage", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with a bad token, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodPost, "/api/session", "", signInRequest{Email: "  "}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank email, got %d", resp.StatusCode)
	}

	old := signIn(t, srv, "ana@example.com")
	resp := do(t, srv, http.MethodGet, "/api/session", old, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if s := decode[session.Session](t, resp); s.Email != "ana@example.com" {
		t.Errorf("Unexpected session: %+v", s)
	}

	current := signIn(t, srv, "ana@example.com")
	if resp := do(t, srv, http.MethodGet, "/api/session", old, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected the replaced session's token to be rejected, got %d", resp.StatusCode)
	}

	if resp := do(t, srv, http.MethodDelete, "/api/session", current, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204 on sign-out, got %d", resp.StatusCode)
	}
	if resp := do(t, srv, http.MethodGet, "/api/session", current, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 after sign-out, got %d", resp.StatusCode)
	}
}

func TestMealsAndShopping(t *testing.T) {
	srv := newTestServer(t)
	token := signIn(t, srv, "ana@example.com")

	t.Run("BlankDish", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/api/meals", token, map[string]string{
			"date": "2024-06-12", "meal_type": "LUNCH", "dish_name": "  ",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if got := decode[map[string]any](t, resp); got["saved"] != false {
			t.Errorf("Expected saved=false, got %v", got)
		}
	})

	t.Run("InvalidMealType", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/api/meals", token, map[string]string{
			"date": "2024-06-12", "meal_type": "BRUNCH", "dish_name": "Huevos",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	resp := do(t, srv, http.MethodPost, "/api/meals", token, map[string]string{
		"date": "2024-06-12", "meal_type": "lunch", "dish_name": "Gazpacho",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	saved := decode[struct {
		Saved    bool            `json:"saved"`
		Eligible bool            `json:"eligible"`
		Items    []shopping.Item `json:"items"`
		Meal     struct {
			ID string `json:"id"`
		} `json:"meal"`
	}](t, resp)
	if !saved.Saved || !saved.Eligible || len(saved.Items) != 3 || saved.Meal.ID == "" {
		t.Fatalf("Unexpected save response: %+v", saved)
	}

	do(t, srv, http.MethodPost, "/api/meals", token, map[string]string{
		"date": "2024-06-18", "meal_type": "DINNER", "dish_name": "Pisto",
	})

	t.Run("WeekPlan", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/meals?week=1", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		plan := decode[weekPlanResponse](t, resp)
		if plan.WeekOffset != 1 || plan.Days[1].Dinner == nil || plan.Days[1].Dinner.DishName != "Pisto" {
			t.Errorf("Unexpected next week: %+v", plan)
		}
		if resp := do(t, srv, http.MethodGet, "/api/meals?week=3", token, nil); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for week=3, got %d", resp.StatusCode)
		}
	})

	t.Run("Eligibility", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/meals/eligibility?date=2024-06-18", token, nil)
		if got := decode[eligibilityResponse](t, resp); got.WillGenerateIngredients {
			t.Errorf("Expected next week not to generate ingredients, got %+v", got)
		}
	})

	t.Run("ShoppingFlow", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/api/shopping/items", token, addItemRequest{Name: " Tomate "})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}

		summary := decode[shopping.Summary](t, do(t, srv, http.MethodGet, "/api/shopping", token, nil))
		if summary.Total != 3 {
			t.Fatalf("Expected 3 groups, got %+v", summary.Groups)
		}

		resp = do(t, srv, http.MethodPost, "/api/shopping/groups/TOMATE/toggle", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		summary = decode[shopping.Summary](t, resp)
		last := summary.Groups[len(summary.Groups)-1]
		if summary.Purchased != 1 || last.Key != "tomate" || !last.Manual {
			t.Errorf("Expected tomato purchased and last, got %+v", summary)
		}

		if resp := do(t, srv, http.MethodPost, "/api/shopping/groups/queso/toggle", token, nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 for unknown group, got %d", resp.StatusCode)
		}

		resp = do(t, srv, http.MethodDelete, "/api/shopping/groups/ajo", token, nil)
		if summary := decode[shopping.Summary](t, resp); summary.Total != 2 {
			t.Errorf("Expected 2 groups after delete, got %+v", summary)
		}

		if resp := do(t, srv, http.MethodPost, "/api/shopping/items", token, addItemRequest{Name: " "}); resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 for blank item, got %d", resp.StatusCode)
		}
	})

	t.Run("DeleteMeal", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if resp := do(t, srv, http.MethodDelete, "/api/meals/"+saved.Meal.ID, token, nil); resp.StatusCode != http.StatusNoContent {
				t.Fatalf("Expected 204, got %d", resp.StatusCode)
			}
		}
		summary := decode[shopping.Summary](t, do(t, srv, http.MethodGet, "/api/shopping", token, nil))
		if summary.Total != 1 || summary.Groups[0].Key != "tomate" || len(summary.Groups[0].IDs) != 1 {
			t.Errorf("Expected only the manual tomato left, got %+v", summary.Groups)
		}
	})
}
