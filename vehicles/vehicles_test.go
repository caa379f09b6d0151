package vehicles

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wiper-backend/migrations"
	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	vehicle *Vehicle
	saved   *Vehicle
}

func (f *fakeStore) ForAccount(accountID int) (*Vehicle, error) { return f.vehicle, nil }

func (f *fakeStore) Upsert(v *Vehicle) error {
	v.ID = 1
	f.saved = v
	return nil
}

func vehicleRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		session.SetAccount(c, &migrations.Account{ID: 1, Email: "owner@example.com"})
	})
	NewHandler(store).RegisterRoutes(r)
	return r
}

func TestGetVehicleEmptyState(t *testing.T) {
	r := vehicleRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/vehicle", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       *Vehicle `json:"data"`
		HasVehicle bool     `json:"has_vehicle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	assert.False(t, body.HasVehicle)
}

func TestGetVehicle(t *testing.T) {
	r := vehicleRouter(&fakeStore{vehicle: &Vehicle{ID: 1, AccountID: 1, RegistrationNumber: "KA01AB1234", Brand: "Maruti"}})

	req := httptest.NewRequest(http.MethodGet, "/vehicle", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       *Vehicle `json:"data"`
		HasVehicle bool     `json:"has_vehicle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, "KA01AB1234", body.Data.RegistrationNumber)
	assert.True(t, body.HasVehicle)
}

func TestUpsertVehicle(t *testing.T) {
	store := &fakeStore{}
	r := vehicleRouter(store)

	payload, _ := json.Marshal(gin.H{
		"registration_number": "  KA01AB1234  ",
		"brand":               "Maruti",
		"make":                "Swift",
		"class":               "Hatchback",
	})
	req := httptest.NewRequest(http.MethodPut, "/vehicle", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.saved)
	assert.Equal(t, 1, store.saved.AccountID)
	assert.Equal(t, "KA01AB1234", store.saved.RegistrationNumber)
	assert.Equal(t, "Hatchback", store.saved.Class)
}

func TestUpsertVehicleRequiresRegistration(t *testing.T) {
	store := &fakeStore{}
	r := vehicleRouter(store)

	payload, _ := json.Marshal(gin.H{"brand": "Maruti"})
	req := httptest.NewRequest(http.MethodPut, "/vehicle", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.saved)
}

func TestVehicleWithoutSessionRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&fakeStore{}).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/vehicle", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
