package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// seedExpenseSeries creates a budget with no income plus a weekly expense
// starting 2025-01-03, materializes January, and returns the budget ID and
// the materialized January occurrences.
func seedExpenseSeries(t *testing.T, app *testApp, token string) (float64, []interface{}) {
	t.Helper()

	budgetID := app.createBudget(t, token,
		`{"name":"Household","first_pay_date":"2025-01-03","pay_frequency":"Monthly","pay_amount":0}`)

	rec := app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/definitions", budgetID),
		`{"kind":"expense","name":"Groceries","amount":10000,"frequency":"Weekly","anchor_day":3,"start_date":"2025-01-03"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create definition failed: %d %s", rec.Code, rec.Body.String())
	}

	view := app.monthEvents(t, token, budgetID, "2025-01")
	series := filterByName(view, "Groceries")
	if len(series) != 5 {
		t.Fatalf("expected 5 weekly occurrences in January, got %d", len(series))
	}
	return budgetID, series
}

// filterByName extracts one series from a month view, leaving out the
// seeded paycheck occurrences.
func filterByName(view map[string]interface{}, name string) []interface{} {
	var matched []interface{}
	for _, raw := range view["occurrences"].([]interface{}) {
		occ := raw.(map[string]interface{})
		if occ["name"] == name {
			matched = append(matched, raw)
		}
	}
	return matched
}

func TestOccurrenceFlow_OverrideSurvivesRematerialization(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "override@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	second := series[1].(map[string]interface{})
	occID := second["id"].(float64)

	// Bump one week's spend
	rec := app.request("PATCH", fmt.Sprintf("/api/v1/occurrences/%.0f", occID),
		`{"amount":17500}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["occurrence"].(map[string]interface{})
	if updated["override"] != true {
		t.Error("expected the edited occurrence to be marked overridden")
	}

	// Re-materializing the month keeps the override in place
	view := app.monthEvents(t, token, budgetID, "2025-01")
	summary := view["summary"].(map[string]interface{})
	if summary["total_expenses"].(float64) != 57500 {
		t.Errorf("expected 57500 expenses (4x10000 + 17500), got %.0f", summary["total_expenses"].(float64))
	}
}

func TestOccurrenceFlow_PaidTracking(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "paid@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	first := series[0].(map[string]interface{})
	occID := first["id"].(float64)

	rec := app.request("PUT", fmt.Sprintf("/api/v1/occurrences/%.0f/paid", occID),
		`{"is_paid":true}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["occurrence"].(map[string]interface{})
	if updated["is_paid"] != true {
		t.Error("expected is_paid true")
	}
	// Paid status is bookkeeping, not an override
	if updated["override"] != false {
		t.Error("expected paid toggle to leave override unset")
	}

	view := app.monthEvents(t, token, budgetID, "2025-01")
	summary := view["summary"].(map[string]interface{})
	if summary["expenses_paid"].(float64) != 10000 {
		t.Errorf("expected 10000 paid, got %.0f", summary["expenses_paid"].(float64))
	}
	if summary["total_expenses"].(float64) != 50000 {
		t.Errorf("expected 50000 total, got %.0f", summary["total_expenses"].(float64))
	}
}

func TestOccurrenceFlow_DeleteCurrentLeavesTombstone(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "skipweek@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	third := series[2].(map[string]interface{})
	occID := third["id"].(float64)

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/occurrences/%.0f", occID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// The deleted slot stays empty across re-materialization
	view := app.monthEvents(t, token, budgetID, "2025-01")
	occurrences := filterByName(view, "Groceries")
	if len(occurrences) != 4 {
		t.Fatalf("expected 4 occurrences after delete, got %d", len(occurrences))
	}
	for _, raw := range occurrences {
		occ := raw.(map[string]interface{})
		if occ["date"] == third["date"] {
			t.Errorf("deleted occurrence on %v came back", third["date"])
		}
	}
}

func TestOccurrenceFlow_DeleteFutureEndsSeries(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "endseries@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	// Delete from the third week (2025-01-17) onward
	third := series[2].(map[string]interface{})
	occID := third["id"].(float64)

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/occurrences/%.0f?mode=future", occID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	view := app.monthEvents(t, token, budgetID, "2025-01")
	occurrences := filterByName(view, "Groceries")
	if len(occurrences) != 2 {
		t.Fatalf("expected 2 occurrences before the cutoff, got %d", len(occurrences))
	}

	// Later months project nothing
	view = app.monthEvents(t, token, budgetID, "2025-02")
	if n := len(filterByName(view, "Groceries")); n != 0 {
		t.Errorf("expected 0 February occurrences, got %d", n)
	}
}

func TestOccurrenceFlow_DeleteAllRemovesSeries(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "deleteall@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	first := series[0].(map[string]interface{})
	occID := first["id"].(float64)

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/occurrences/%.0f?mode=all", occID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	view := app.monthEvents(t, token, budgetID, "2025-01")
	if n := len(filterByName(view, "Groceries")); n != 0 {
		t.Errorf("expected 0 occurrences after deleting the series, got %d", n)
	}
	summary := view["summary"].(map[string]interface{})
	if summary["total_expenses"].(float64) != 0 {
		t.Errorf("expected 0 expenses, got %.0f", summary["total_expenses"].(float64))
	}
}

func TestOccurrenceFlow_SeriesEditPropagatesForward(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "raiserent@test.com", "password123")
	budgetID, series := seedExpenseSeries(t, app, token)

	// Raise the series amount from the third week onward
	third := series[2].(map[string]interface{})
	occID := third["id"].(float64)

	rec := app.request("PATCH", fmt.Sprintf("/api/v1/occurrences/%.0f/series", occID),
		fmt.Sprintf(`{"amount":12000,"propagate":"all","from":%q}`, third["date"]), token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Weeks before the cutoff keep the old amount, later weeks pick up the new one
	view := app.monthEvents(t, token, budgetID, "2025-01")
	occurrences := filterByName(view, "Groceries")
	if len(occurrences) != 5 {
		t.Fatalf("expected 5 occurrences, got %d", len(occurrences))
	}
	for _, raw := range occurrences {
		occ := raw.(map[string]interface{})
		want := float64(12000)
		if occ["date"].(string) < third["date"].(string) {
			want = 10000
		}
		if occ["amount"].(float64) != want {
			t.Errorf("%v: expected %.0f, got %.0f", occ["date"], want, occ["amount"].(float64))
		}
	}
	summary := view["summary"].(map[string]interface{})
	if summary["total_expenses"].(float64) != 56000 {
		t.Errorf("expected 56000 expenses, got %.0f", summary["total_expenses"].(float64))
	}
}

func TestOccurrenceFlow_OneTimeItemsHaveNoSeries(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "noseries@test.com", "password123")

	budgetID := app.createBudget(t, token,
		`{"name":"Household","first_pay_date":"2025-01-03","pay_frequency":"Monthly","pay_amount":0}`)

	rec := app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/occurrences", budgetID),
		`{"kind":"expense","name":"Car repair","date":"2025-01-20","amount":45000}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	occID := parseJSON(t, rec)["occurrence"].(map[string]interface{})["id"].(float64)

	// Series-scoped operations are rejected
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/occurrences/%.0f?mode=future", occID), "", token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for future delete, got %d", rec.Code)
	}
	rec = app.request("PATCH", fmt.Sprintf("/api/v1/occurrences/%.0f/series", occID),
		`{"amount":50000,"propagate":"all","from":"2025-01-20"}`, token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for series edit, got %d", rec.Code)
	}

	// Plain delete works
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/occurrences/%.0f", occID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}
