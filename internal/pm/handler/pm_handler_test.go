package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/pm/entity"
	"github.com/bitfantasy/nimo-build/internal/pm/repository"
	"github.com/bitfantasy/nimo-build/internal/pm/service"
	"github.com/bitfantasy/nimo-build/internal/shared/testutil"
	"github.com/gin-gonic/gin"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func setupPMTest(t *testing.T) *gin.Engine {
	t.Helper()
	return setupPMTestAt(t, testNow)
}

func setupPMTestAt(t *testing.T, now time.Time) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t, entity.All()...)
	router := testutil.SetupRouter()

	svcs := service.NewServices(repository.NewRepositories(db), service.Deps{
		Now: func() time.Time { return now },
	})
	NewHandlers(svcs).RegisterRoutes(testutil.AuthGroup(router, "/api/v1"))
	return router
}

func mustCreate(t *testing.T, r *gin.Engine, token, path string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(r, "POST", path, body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %s", path, w.Code, w.Body.String())
	}
	return testutil.Data(w)
}

func createProject(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	data := mustCreate(t, r, token, "/api/v1/projects", map[string]interface{}{
		"name":            "Riverside Medical Office",
		"contract_amount": 1000000,
		"estimated_cost":  900000,
		"status":          "active",
	})
	return data["id"].(string)
}

func TestProjectCRUD(t *testing.T) {
	r := setupPMTest(t)
	token := testutil.DefaultTestToken()
	id := createProject(t, r, token)

	w := testutil.DoRequest(r, "GET", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if code, _ := testutil.Data(w)["code"].(string); code == "" {
		t.Error("Expected generated project code")
	}

	w = testutil.DoRequest(r, "PUT", "/api/v1/projects/"+id, map[string]interface{}{"status": "paused"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "PUT", "/api/v1/projects/"+id, map[string]interface{}{"status": "on_hold"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if testutil.Data(w)["status"] != "on_hold" {
		t.Errorf("Expected on_hold, got %v", testutil.Data(w)["status"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/projects", nil, token)
	if len(testutil.Items(w)) != 1 {
		t.Errorf("Expected 1 project, got %d", len(testutil.Items(w)))
	}

	other := testutil.GenerateTestToken("user-2", "company-other", nil)
	w = testutil.DoRequest(r, "GET", "/api/v1/projects/"+id, nil, other)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 across companies, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "DELETE", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "DELETE", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestProjectCodes(t *testing.T) {
	r := setupPMTestAt(t, time.Date(2031, 3, 1, 8, 0, 0, 0, time.UTC))
	token := testutil.DefaultTestToken()

	first := mustCreate(t, r, token, "/api/v1/projects", map[string]interface{}{"name": "Depot"})
	second := mustCreate(t, r, token, "/api/v1/projects", map[string]interface{}{"name": "Clinic"})
	if first["code"] != "PRJ-2031-0001" || second["code"] != "PRJ-2031-0002" {
		t.Fatalf("Expected PRJ-2031-0001/0002, got %v/%v", first["code"], second["code"])
	}

	w := testutil.DoRequest(r, "POST", "/api/v1/projects", map[string]interface{}{"name": "Copy", "code": "PRJ-2031-0001"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate code, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectBudget(t *testing.T) {
	r := setupPMTest(t)
	token := testutil.DefaultTestToken()
	id := createProject(t, r, token)
	base := "/api/v1/projects/" + id

	co := mustCreate(t, r, token, base+"/change-orders", map[string]interface{}{"title": "Added canopy", "amount": 50000, "status": "pending"})
	if co["number"] != "CO-001" {
		t.Errorf("Expected CO-001, got %v", co["number"])
	}
	mustCreate(t, r, token, base+"/change-orders", map[string]interface{}{"title": "Owner credit", "amount": -5000, "status": "rejected"})

	w := testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/change-orders/%s", co["id"]), map[string]interface{}{"status": "approved"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if testutil.Data(w)["approved_at"] == nil {
		t.Error("Expected approved_at after approval")
	}

	mustCreate(t, r, token, base+"/budget-lines", map[string]interface{}{"cost_code": "03-300", "budgeted_amount": 500000, "actual_amount": 600000})
	mustCreate(t, r, token, base+"/budget-lines", map[string]interface{}{"cost_code": "05-100", "budgeted_amount": 500000, "actual_amount": 450000})

	w = testutil.DoRequest(r, "GET", base+"/budget", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.Data(w)
	if data["revised_contract"] != 1050000.0 {
		t.Errorf("Expected revised contract 1050000, got %v", data["revised_contract"])
	}
	if data["utilization_pct"] != 100.0 {
		t.Errorf("Expected utilization 100, got %v", data["utilization_pct"])
	}
	if data["utilization_tier"] != "warning" {
		t.Errorf("Expected warning tier, got %v", data["utilization_tier"])
	}
	lines, _ := data["lines"].([]interface{})
	if len(lines) != 2 {
		t.Fatalf("Expected 2 budget lines, got %d", len(lines))
	}
	if tier := lines[0].(map[string]interface{})["utilization_tier"]; tier != "over" {
		t.Errorf("Expected first line over budget, got %v", tier)
	}
}

func TestScheduleView(t *testing.T) {
	r := setupPMTest(t)
	token := testutil.DefaultTestToken()
	id := createProject(t, r, token)
	base := "/api/v1/projects/" + id

	sitePrep := mustCreate(t, r, token, base+"/phases", map[string]interface{}{"name": "Site Prep"})
	structure := mustCreate(t, r, token, base+"/phases", map[string]interface{}{"name": "Structure"})
	if structure["sort_order"] != 2.0 {
		t.Errorf("Expected appended phase order 2, got %v", structure["sort_order"])
	}

	task := mustCreate(t, r, token, base+"/tasks", map[string]interface{}{
		"name": "Clear lot", "phase_id": sitePrep["id"], "status": "completed", "completion_pct": 40, "is_milestone": true,
	})
	if task["completion_pct"] != 100.0 {
		t.Errorf("Expected completed task forced to 100, got %v", task["completion_pct"])
	}
	mustCreate(t, r, token, base+"/tasks", map[string]interface{}{
		"name": "Grading", "phase_id": sitePrep["id"], "status": "in_progress", "completion_pct": 50, "end_date": "2026-01-05",
	})
	mustCreate(t, r, token, base+"/tasks", map[string]interface{}{"name": "Permit follow-up"})

	w := testutil.DoRequest(r, "POST", base+"/tasks", map[string]interface{}{"name": "Bad", "completion_pct": 120}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for completion 120, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", base+"/schedule", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.Data(w)
	phases, _ := data["phases"].([]interface{})
	if len(phases) != 2 {
		t.Fatalf("Expected 2 phases, got %d", len(phases))
	}
	first := phases[0].(map[string]interface{})
	if first["name"] != "Site Prep" || first["completion"] != 75.0 {
		t.Errorf("Expected Site Prep at 75%%, got %v at %v", first["name"], first["completion"])
	}
	if second := phases[1].(map[string]interface{}); second["task_count"] != 0.0 {
		t.Errorf("Expected empty Structure phase, got %v tasks", second["task_count"])
	}
	if unassigned, _ := data["unassigned"].([]interface{}); len(unassigned) != 1 {
		t.Errorf("Expected 1 unassigned task, got %d", len(unassigned))
	}
	if milestones, _ := data["milestones"].([]interface{}); len(milestones) != 1 {
		t.Errorf("Expected 1 milestone, got %d", len(milestones))
	}
	summary := data["summary"].(map[string]interface{})
	if summary["total_tasks"] != 3.0 || summary["overdue"] != 1.0 {
		t.Errorf("Unexpected summary: %v", summary)
	}

	w = testutil.DoRequest(r, "GET", base+"/tasks?window=overdue", nil, token)
	if len(testutil.List(w)) != 1 {
		t.Errorf("Expected 1 overdue task, got %d", len(testutil.List(w)))
	}

	w = testutil.DoRequest(r, "DELETE", fmt.Sprintf("/api/v1/phases/%s", sitePrep["id"]), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "GET", base+"/tasks?phase_id=none", nil, token)
	if len(testutil.List(w)) != 3 {
		t.Errorf("Expected tasks released to unassigned, got %d", len(testutil.List(w)))
	}
}

func TestSubmittalAndRFILogs(t *testing.T) {
	r := setupPMTest(t)
	token := testutil.DefaultTestToken()
	id := createProject(t, r, token)
	base := "/api/v1/projects/" + id

	sub := mustCreate(t, r, token, base+"/submittals", map[string]interface{}{
		"title": "Rebar shop drawings", "status": "under_review", "due_date": "2026-01-09",
	})
	if sub["number"] != "SUB-001" || sub["window"] != "overdue" {
		t.Errorf("Expected SUB-001 overdue, got %v %v", sub["number"], sub["window"])
	}
	mustCreate(t, r, token, base+"/submittals", map[string]interface{}{"title": "Curtain wall", "due_date": "2026-01-14"})

	w := testutil.DoRequest(r, "GET", base+"/submittals", nil, token)
	kpis := testutil.Data(w)["kpis"].(map[string]interface{})
	if kpis["overdue"] != 1.0 || kpis["due_soon"] != 1.0 || kpis["total"] != 2.0 {
		t.Errorf("Unexpected submittal KPIs: %v", kpis)
	}

	w = testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/submittals/%s", sub["id"]), map[string]interface{}{"status": "approved"}, token)
	data := testutil.Data(w)
	if data["window"] == "overdue" || data["reviewed_at"] == nil {
		t.Errorf("Expected approved submittal out of overdue with reviewed_at, got %v", data)
	}

	w = testutil.DoRequest(r, "GET", base+"/submittals?overdue=true", nil, token)
	if items, _ := testutil.Data(w)["items"].([]interface{}); len(items) != 0 {
		t.Errorf("Expected no overdue submittals, got %d", len(items))
	}

	rfi := mustCreate(t, r, token, base+"/rfis", map[string]interface{}{"subject": "Footing depth", "due_date": "2026-01-08"})
	if rfi["number"] != "RFI-001" || rfi["status"] != "open" {
		t.Errorf("Expected RFI-001 open, got %v %v", rfi["number"], rfi["status"])
	}
	w = testutil.DoRequest(r, "PUT", fmt.Sprintf("/api/v1/rfis/%s", rfi["id"]), map[string]interface{}{"answer": "Use 48 inches"}, token)
	if testutil.Data(w)["status"] != "answered" {
		t.Errorf("Expected answered after answer, got %v", testutil.Data(w)["status"])
	}

	w = testutil.DoRequest(r, "GET", base+"/rfis", nil, token)
	summary := testutil.Data(w)["summary"].(map[string]interface{})
	if summary["answered"] != 1.0 || summary["overdue"] != 0.0 {
		t.Errorf("Unexpected RFI summary: %v", summary)
	}
}

func TestDailyLogs(t *testing.T) {
	r := setupPMTest(t)
	token := testutil.DefaultTestToken()
	id := createProject(t, r, token)

	l := mustCreate(t, r, token, "/api/v1/projects/"+id+"/daily-logs", map[string]interface{}{
		"log_date":   "2026-01-09",
		"crew_count": 14,
		"weather":    map[string]interface{}{"conditions": "overcast", "precipitation": false},
		"work_done":  "Formwork level 3",
	})
	weather, _ := l["weather"].(map[string]interface{})
	if weather["conditions"] != "overcast" {
		t.Errorf("Expected weather round trip, got %v", l["weather"])
	}

	w := testutil.DoRequest(r, "POST", "/api/v1/projects/"+id+"/daily-logs", map[string]interface{}{"log_date": "soon"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad date, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/projects/"+id+"/daily-logs", nil, token)
	if len(testutil.List(w)) != 1 {
		t.Errorf("Expected 1 daily log, got %d", len(testutil.List(w)))
	}
}
