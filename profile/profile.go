package profile

import (
	"net/http"
	"strings"
	"time"

	"wiper-backend/login"
	"wiper-backend/migrations"
	"wiper-backend/plans"
	"wiper-backend/session"
	"wiper-backend/vehicles"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// EntitlementStore resolves the active plan for the overview.
type EntitlementStore interface {
	ActiveForAccount(accountID int) (*plans.Entitlement, error)
}

// VehicleStore resolves the account's car.
type VehicleStore interface {
	ForAccount(accountID int) (*vehicles.Vehicle, error)
}

// UpdateStore supplies the cleaned-days counter.
type UpdateStore interface {
	CountCleanedDays(since time.Time) (int, error)
}

type Handler struct {
	ents     EntitlementStore
	vehicles VehicleStore
	updates  UpdateStore
	now      func() time.Time
}

func NewHandler(ents EntitlementStore, vehicleStore VehicleStore, updateStore UpdateStore) *Handler {
	return &Handler{ents: ents, vehicles: vehicleStore, updates: updateStore, now: time.Now}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/profile", h.get)
	r.POST("/profile", h.update)
	// Aggregated endpoint so app start avoids firing several sequential
	// fetches (profile, plan, vehicle, feed counter).
	r.GET("/overview", h.overview)
	r.POST("/feedback", h.feedback)
}

func (h *Handler) get(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	resp := login.AccountResponse(account)
	if v, err := h.vehicles.ForAccount(account.ID); err == nil && v != nil {
		resp["vehicle"] = v
	}
	if ent, err := h.ents.ActiveForAccount(account.ID); err == nil && ent != nil {
		resp["active_plan"] = ent
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePayload struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Block         string `json:"block"`
	ApartmentName string `json:"apartment_name"`
}

func (h *Handler) update(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p updatePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	err := migrations.UpdateAccountProfile(account.ID,
		strings.TrimSpace(p.FullName), strings.TrimSpace(p.Phone),
		strings.TrimSpace(p.Block), strings.TrimSpace(p.ApartmentName))
	if err != nil {
		log.WithError(err).Error("[PROFILE] update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}
	updated := migrations.GetAccountByID(account.ID)
	c.JSON(http.StatusOK, gin.H{"data": login.AccountResponse(updated)})
}

func (h *Handler) overview(c *gin.Context) {
	start := time.Now()
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	prof := login.AccountResponse(account)

	plan := gin.H{"has_plan": false}
	ent, err := h.ents.ActiveForAccount(account.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", account.ID).Error("[OVERVIEW] entitlement lookup failed")
	}
	cleaned := 0
	if ent != nil {
		plan = gin.H{
			"has_plan":       true,
			"entitlement":    ent,
			"days_remaining": ent.DaysRemaining(h.now()),
			"ends_on":        ent.EndDate.Format("2 Jan 2006"),
		}
		if p := plans.PlanByType(ent.PlanType); p != nil {
			plan["current_plan"] = p.ID
			plan["plan_type"] = p.Type
		}
		if n, err := h.updates.CountCleanedDays(ent.StartDate); err == nil {
			cleaned = n
		}
	}

	var vehicle *vehicles.Vehicle
	if v, err := h.vehicles.ForAccount(account.ID); err == nil {
		vehicle = v
	}

	log.WithFields(log.Fields{
		"account_id": account.ID,
		"has_plan":   ent != nil,
		"duration":   time.Since(start).String(),
	}).Info("[OVERVIEW] served")
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"profile":      prof,
		"plan":         plan,
		"vehicle":      vehicle,
		"cleaned_days": cleaned,
	}})
}

type feedbackPayload struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

func (h *Handler) feedback(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p feedbackPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if p.Rating < 1 || p.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	if err := migrations.InsertFeedback(account.ID, p.Rating, strings.TrimSpace(p.Message)); err != nil {
		log.WithError(err).Error("[PROFILE] feedback insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save feedback"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for your feedback"})
}
