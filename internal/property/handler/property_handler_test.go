package handler

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/property/entity"
	"github.com/bitfantasy/nimo-build/internal/property/repository"
	"github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/testutil"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func setupPropertyTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t, append(entity.All(), &importer.Batch{})...)
	router := testutil.SetupRouter()

	svcs := service.NewServices(repository.NewRepositories(db), service.Deps{
		Batches: importer.NewBatchRepository(db),
		MaxRows: 100,
		Now:     func() time.Time { return testNow },
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

func createProperty(t *testing.T, r *gin.Engine, token, name string) string {
	t.Helper()
	return mustCreate(t, r, token, "/api/v1/properties", map[string]interface{}{
		"name": name, "property_type": "multifamily", "units": 312,
	})["id"].(string)
}

func TestPropertyCRUD(t *testing.T) {
	r := setupPropertyTest(t)
	token := testutil.DefaultTestToken()
	id := createProperty(t, r, token, "The Meridian")

	w := testutil.DoRequest(r, "PUT", "/api/v1/properties/"+id, map[string]interface{}{"units": 320}, token)
	if w.Code != http.StatusOK || testutil.Data(w)["units"] != 320.0 {
		t.Fatalf("Expected units updated, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/properties", nil, token)
	if len(testutil.List(w)) != 1 {
		t.Errorf("Expected 1 property, got %d", len(testutil.List(w)))
	}

	other := testutil.GenerateTestToken("user-x", "company-other", nil)
	if w := testutil.DoRequest(r, "GET", "/api/v1/properties/"+id, nil, other); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 across companies, got %d", w.Code)
	}

	if w := testutil.DoRequest(r, "DELETE", "/api/v1/properties/"+id, nil, token); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w := testutil.DoRequest(r, "GET", "/api/v1/properties/"+id, nil, token); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestMaintenanceKPIsAndCompletion(t *testing.T) {
	r := setupPropertyTest(t)
	token := testutil.DefaultTestToken()
	pid := createProperty(t, r, token, "The Meridian")

	lobby := mustCreate(t, r, token, "/api/v1/maintenance-requests", map[string]interface{}{
		"property_id": pid, "title": "Lobby Door Closer", "priority": "high", "scheduled_date": "2026-01-05",
	})
	if lobby["window"] != "overdue" || lobby["status"] != "submitted" {
		t.Errorf("Expected submitted overdue request, got %v %v", lobby["status"], lobby["window"])
	}
	mustCreate(t, r, token, "/api/v1/maintenance-requests", map[string]interface{}{
		"property_id": pid, "title": "Fire Alarm Panel", "priority": "critical", "scheduled_date": "2026-01-12",
	})
	mustCreate(t, r, token, "/api/v1/maintenance-requests", map[string]interface{}{
		"property_id": pid, "title": "Gym Equipment", "priority": "low",
	})

	w := testutil.DoRequest(r, "POST", "/api/v1/maintenance-requests", map[string]interface{}{
		"property_id": "missing", "title": "x",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown property, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/maintenance-requests/kpis", nil, token)
	k := testutil.Data(w)
	if k["total"] != 3.0 || k["open"] != 3.0 || k["emergency"] != 1.0 || k["overdue"] != 1.0 {
		t.Errorf("Unexpected KPIs: %v", k)
	}

	w = testutil.DoRequest(r, "PUT", "/api/v1/maintenance-requests/"+lobby["id"].(string), map[string]interface{}{
		"status": "completed", "actual_cost": 310,
	}, token)
	data := testutil.Data(w)
	if data["completed_at"] == nil || data["window"] == "overdue" {
		t.Errorf("Expected completed request with completed_at and no overdue, got %v", data)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/maintenance-requests/kpis?priority=emergency", nil, token)
	if k := testutil.Data(w); k["total"] != 1.0 {
		t.Errorf("Expected KPIs over filtered set, got %v", k)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/maintenance-requests?open=true", nil, token)
	if n := len(testutil.Items(w)); n != 2 {
		t.Errorf("Expected 2 open requests, got %d", n)
	}
}

func TestExpenseImportSummaryExport(t *testing.T) {
	r := setupPropertyTest(t)
	token := testutil.DefaultTestToken()
	meridian := createProperty(t, r, token, "The Meridian")
	createProperty(t, r, token, "Harbor View")

	csv := "expense_type,description,amount,frequency,effective_date,end_date,vendor_name,property_name\n" +
		"insurance,All-Risk Coverage,960000,annual,2025-01-01,2025-12-31,Marsh McLennan,The Meridian\n" +
		"utilities,Common Area Electricity,28000,monthly,2025-01-01,2025-12-31,Oncor Electric,the meridian\n" +
		"cam,Roof Drain Cleaning,1200,quarterly,,,Drain Co,Harbor View\n" +
		"capex,Boiler replacement,50000,one_time,,,Mech Co,The Meridian\n" +
		"parking,Unknown type,10,monthly,,,x,The Meridian\n" +
		"utilities,Orphan,10,monthly,,,x,Nowhere Tower\n"

	w := testutil.DoUpload(r, "/api/v1/property-expenses/import", "expenses.csv", []byte(csv), token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := testutil.Data(w)
	if res["imported"] != 4.0 || res["failed"] != 2.0 {
		t.Fatalf("Expected 4 imported / 2 failed, got %v", res)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/property-expenses/summary", nil, token)
	s := testutil.Data(w)
	if s["monthly_run_rate"] != 108400.0 || s["annual_total"] != 1300800.0 || s["one_time_total"] != 50000.0 {
		t.Errorf("Unexpected company summary: %v", s)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/property-expenses/summary?property_id="+meridian, nil, token)
	s = testutil.Data(w)
	if s["count"] != 3.0 || s["monthly_run_rate"] != 108000.0 {
		t.Errorf("Expected summary over Meridian only, got %v", s)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/property-expenses?expense_type=cam", nil, token)
	items := testutil.Items(w)
	if len(items) != 1 || items[0].(map[string]interface{})["monthly_equivalent"] != 400.0 {
		t.Fatalf("Expected quarterly 1200 as 400/month, got %v", items)
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/property-expenses/export", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on export, got %d", w.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("export is not xlsx: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Expenses")
	// header + 4 expenses + summary
	if len(rows) != 6 {
		t.Errorf("Expected 6 rows, got %d", len(rows))
	}
	if rows[1][0] == "" {
		t.Error("Expected property name in export")
	}
}

func TestExpenseValidation(t *testing.T) {
	r := setupPropertyTest(t)
	token := testutil.DefaultTestToken()
	pid := createProperty(t, r, token, "The Meridian")

	w := testutil.DoRequest(r, "POST", "/api/v1/property-expenses", map[string]interface{}{
		"property_id": pid, "expense_type": "utilities", "amount": 100, "frequency": "weekly",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown frequency, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "POST", "/api/v1/property-expenses", map[string]interface{}{
		"property_id": pid, "expense_type": "utilities",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing amount, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "POST", "/api/v1/property-expenses", map[string]interface{}{
		"property_id": pid, "expense_type": "utilities", "amount": 0,
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero amount, got %d", w.Code)
	}

	e := mustCreate(t, r, token, "/api/v1/property-expenses", map[string]interface{}{
		"property_id": pid, "expense_type": "insurance", "amount": 1200, "frequency": "annual",
	})
	if e["monthly_equivalent"] != 100.0 {
		t.Errorf("Expected 100/month, got %v", e["monthly_equivalent"])
	}
	w = testutil.DoRequest(r, "PUT", "/api/v1/property-expenses/"+e["id"].(string), map[string]interface{}{"amount": 0}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 when updating amount to zero, got %d", w.Code)
	}
	w = testutil.DoRequest(r, "PUT", "/api/v1/property-expenses/"+e["id"].(string), map[string]interface{}{"frequency": "quarterly"}, token)
	if testutil.Data(w)["monthly_equivalent"] != 400.0 {
		t.Errorf("Expected 400/month after change, got %v", testutil.Data(w)["monthly_equivalent"])
	}
}
