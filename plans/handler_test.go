package plans

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wiper-backend/migrations"
	"wiper-backend/session"
	"wiper-backend/vehicles"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntitlements struct {
	active  *Entitlement
	created []*Entitlement
}

func (f *fakeEntitlements) ActiveForAccount(accountID int) (*Entitlement, error) {
	return f.active, nil
}

func (f *fakeEntitlements) Create(e *Entitlement) error {
	e.ID = len(f.created) + 1
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEntitlements) DeactivateForAccount(accountID int) error {
	if f.active != nil && f.active.AccountID == accountID {
		f.active.Active = false
		f.active = nil
	}
	return nil
}

type fakeVehicles struct {
	vehicle *vehicles.Vehicle
}

func (f *fakeVehicles) ForAccount(accountID int) (*vehicles.Vehicle, error) {
	return f.vehicle, nil
}

func plansRouter(store *fakeEntitlements, vs *fakeVehicles, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", func(c *gin.Context) {
		session.SetAccount(c, &migrations.Account{ID: 1, Email: "owner@example.com"})
	})
	h := NewHandler(store, vs, nil)
	h.now = func() time.Time { return now }
	h.RegisterRoutes(r, authed)
	return r
}

func TestGetPlansCatalog(t *testing.T) {
	r := plansRouter(&fakeEntitlements{}, &fakeVehicles{}, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 4)
	assert.Equal(t, "Hatchback", body.Data[0].Type)
	assert.Equal(t, "₹799", body.Data[0].Price)
	assert.True(t, body.Data[1].Popular)
	assert.Equal(t, "Premium", body.Data[3].Type)
	assert.Equal(t, "₹1199", body.Data[3].Price)
}

func TestCurrentPlanEmptyState(t *testing.T) {
	r := plansRouter(&fakeEntitlements{}, &fakeVehicles{}, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/plan", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data    *Entitlement `json:"data"`
		HasPlan bool         `json:"has_plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	assert.False(t, body.HasPlan)
}

func TestCurrentPlanDaysRemaining(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeEntitlements{active: &Entitlement{
		ID: 3, AccountID: 1, PlanType: "SUV", Active: true,
		StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20),
	}}
	r := plansRouter(store, &fakeVehicles{}, now)

	req := httptest.NewRequest(http.MethodGet, "/plan", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		HasPlan       bool `json:"has_plan"`
		DaysRemaining int  `json:"days_remaining"`
		CurrentPlan   int  `json:"current_plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.HasPlan)
	assert.Equal(t, 20, body.DaysRemaining)
	assert.Equal(t, 3, body.CurrentPlan)
}

func TestPurchaseRequiresVehicle(t *testing.T) {
	r := plansRouter(&fakeEntitlements{}, &fakeVehicles{}, time.Now())

	payload, _ := json.Marshal(gin.H{"plan_type": "Sedan"})
	req := httptest.NewRequest(http.MethodPost, "/purchase", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "vehicle_required", body.Code)
}

func TestPurchaseUnknownPlan(t *testing.T) {
	r := plansRouter(&fakeEntitlements{}, &fakeVehicles{vehicle: &vehicles.Vehicle{ID: 1, AccountID: 1}}, time.Now())

	payload, _ := json.Marshal(gin.H{"plan_type": "Truck"})
	req := httptest.NewRequest(http.MethodPost, "/purchase", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseGrantsThirtyDays(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	store := &fakeEntitlements{}
	r := plansRouter(store, &fakeVehicles{vehicle: &vehicles.Vehicle{ID: 1, AccountID: 1, RegistrationNumber: "KA01AB1234"}}, now)

	payload, _ := json.Marshal(gin.H{"plan_type": "SUV"})
	req := httptest.NewRequest(http.MethodPost, "/purchase", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
	ent := store.created[0]
	assert.Equal(t, 1, ent.AccountID)
	assert.Equal(t, "SUV", ent.PlanType)
	assert.True(t, ent.Active)
	assert.NotEmpty(t, ent.Reference)
	assert.Equal(t, now, ent.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 30), ent.EndDate)

	var body struct {
		CurrentPlan int `json:"current_plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.CurrentPlan)
}

func TestPurchaseReplacesActivePlan(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	old := &Entitlement{ID: 1, AccountID: 1, PlanType: "Hatchback", Active: true}
	store := &fakeEntitlements{active: old}
	r := plansRouter(store, &fakeVehicles{vehicle: &vehicles.Vehicle{ID: 1, AccountID: 1}}, now)

	payload, _ := json.Marshal(gin.H{"plan_type": "Premium"})
	req := httptest.NewRequest(http.MethodPost, "/purchase", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, old.Active)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Premium", store.created[0].PlanType)
}

func TestDaysRemainingClampsAtZero(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	ent := Entitlement{EndDate: now.AddDate(0, 0, -2)}
	assert.Equal(t, 0, ent.DaysRemaining(now))
}
