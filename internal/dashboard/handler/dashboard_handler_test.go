package handler

import (
	"net/http"
	"testing"
	"time"

	crmentity "github.com/bitfantasy/nimo-build/internal/crm/entity"
	crmhandler "github.com/bitfantasy/nimo-build/internal/crm/handler"
	crmrepo "github.com/bitfantasy/nimo-build/internal/crm/repository"
	crmsvc "github.com/bitfantasy/nimo-build/internal/crm/service"
	"github.com/bitfantasy/nimo-build/internal/dashboard/service"
	pmentity "github.com/bitfantasy/nimo-build/internal/pm/entity"
	pmrepo "github.com/bitfantasy/nimo-build/internal/pm/repository"
	pmsvc "github.com/bitfantasy/nimo-build/internal/pm/service"
	propentity "github.com/bitfantasy/nimo-build/internal/property/entity"
	prophandler "github.com/bitfantasy/nimo-build/internal/property/handler"
	proprepo "github.com/bitfantasy/nimo-build/internal/property/repository"
	propsvc "github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/testutil"
	"github.com/gin-gonic/gin"
)

func setupDashboardTest(t *testing.T) *gin.Engine {
	t.Helper()
	models := []interface{}{&crmentity.Bid{}, &importer.Batch{}}
	models = append(models, pmentity.All()...)
	models = append(models, propentity.All()...)
	db := testutil.SetupTestDB(t, models...)
	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	now := func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	batches := importer.NewBatchRepository(db)
	crm := crmsvc.NewServices(crmrepo.NewRepositories(db), crmsvc.Deps{Batches: batches, MaxRows: 100, Now: now})
	pm := pmsvc.NewServices(pmrepo.NewRepositories(db), pmsvc.Deps{Now: now})
	prop := propsvc.NewServices(proprepo.NewRepositories(db), propsvc.Deps{Batches: batches, MaxRows: 100, Now: now})

	crmhandler.NewHandlers(crm).RegisterRoutes(api)
	prophandler.NewHandlers(prop).RegisterRoutes(api)
	svc := service.NewDashboardService(service.NewSources(crm, pm, prop), cache.New(nil, "buildpro"), time.Minute, nil)
	NewDashboardHandler(svc).RegisterRoutes(api)
	return router
}

func TestDashboardOverview(t *testing.T) {
	r := setupDashboardTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(r, "GET", "/api/v1/dashboard", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on empty company, got %d: %s", w.Code, w.Body.String())
	}
	if bids := testutil.Data(w)["bids"].(map[string]interface{}); bids["total"] != 0.0 {
		t.Errorf("Expected empty pipeline, got %v", bids)
	}

	for _, body := range []map[string]interface{}{
		{"project_name": "Riverside Medical", "bid_amount": 1500000, "estimated_cost": 1200000, "status": "won"},
		{"project_name": "Harbor Logistics", "bid_amount": 100000, "estimated_cost": 96000, "status": "lost"},
	} {
		if w := testutil.DoRequest(r, "POST", "/api/v1/bids", body, token); w.Code != http.StatusCreated {
			t.Fatalf("create bid: %d %s", w.Code, w.Body.String())
		}
	}
	w = testutil.DoRequest(r, "POST", "/api/v1/properties", map[string]interface{}{"name": "The Meridian"}, token)
	pid := testutil.Data(w)["id"].(string)
	testutil.DoRequest(r, "POST", "/api/v1/property-expenses", map[string]interface{}{
		"property_id": pid, "expense_type": "cam", "amount": 1200, "frequency": "quarterly",
	}, token)

	w = testutil.DoRequest(r, "GET", "/api/v1/dashboard", nil, token)
	data := testutil.Data(w)
	bids := data["bids"].(map[string]interface{})
	if bids["total"] != 2.0 || bids["win_rate"] != 50.0 {
		t.Errorf("Unexpected pipeline: %v", bids)
	}
	expenses := data["expenses"].(map[string]interface{})
	if expenses["monthly_run_rate"] != 400.0 || expenses["annual_total"] != 4800.0 {
		t.Errorf("Unexpected expense summary: %v", expenses)
	}
	if data["monthly_run_rate_display"] != "$400.00" {
		t.Errorf("Expected $400.00, got %v", data["monthly_run_rate_display"])
	}

	other := testutil.GenerateTestToken("user-x", "company-other", nil)
	w = testutil.DoRequest(r, "GET", "/api/v1/dashboard", nil, other)
	if bids := testutil.Data(w)["bids"].(map[string]interface{}); bids["total"] != 0.0 {
		t.Errorf("Expected other company isolated, got %v", bids)
	}
}
