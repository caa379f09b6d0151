package plans

import (
	"net/http"
	"time"

	"wiper-backend/session"
	"wiper-backend/vehicles"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EntitlementStore is what the handler needs; satisfied by Repository.
type EntitlementStore interface {
	ActiveForAccount(accountID int) (*Entitlement, error)
	Create(e *Entitlement) error
	DeactivateForAccount(accountID int) error
}

// VehicleStore gates purchases on vehicle presence.
type VehicleStore interface {
	ForAccount(accountID int) (*vehicles.Vehicle, error)
}

type Handler struct {
	store    EntitlementStore
	vehicles VehicleStore
	stripe   *StripeService
	now      func() time.Time
}

func NewHandler(store EntitlementStore, vehicleStore VehicleStore, stripe *StripeService) *Handler {
	return &Handler{store: store, vehicles: vehicleStore, stripe: stripe, now: time.Now}
}

// RegisterRoutes wires the public catalog route; protected routes go on
// the authed group.
func (h *Handler) RegisterRoutes(r *gin.Engine, authed gin.IRoutes) {
	r.GET("/plans", h.getPlans)
	authed.GET("/plan", h.currentPlan)
	authed.POST("/purchase", h.purchase)
	if h.stripe != nil {
		authed.POST("/checkout", h.checkout)
		authed.GET("/checkout/confirm", h.confirm)
		r.POST("/stripe/webhook", h.webhook)
	}
}

func (h *Handler) getPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": Catalog()})
}

// currentPlan returns the active entitlement or the empty-state branch
// the client renders as a "pick a plan" call-to-action.
func (h *Handler) currentPlan(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	ent, err := h.store.ActiveForAccount(account.ID)
	if err != nil {
		log.WithError(err).Error("[PLANS] entitlement lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load plan"})
		return
	}
	if ent == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "has_plan": false})
		return
	}
	resp := gin.H{"data": ent, "has_plan": true, "days_remaining": ent.DaysRemaining(h.now())}
	if plan := PlanByType(ent.PlanType); plan != nil {
		resp["current_plan"] = plan.ID
	}
	c.JSON(http.StatusOK, resp)
}

type purchasePayload struct {
	PlanType string `json:"plan_type"`
}

func (h *Handler) purchase(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p purchasePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	plan := PlanByType(p.PlanType)
	if plan == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	// Vehicle details come first; the client runs the capture sub-flow
	// on this code and retries the purchase.
	vehicle, err := h.vehicles.ForAccount(account.ID)
	if err != nil {
		log.WithError(err).Error("[PLANS] vehicle lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify vehicle"})
		return
	}
	if vehicle == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle details required before purchase", "code": "vehicle_required"})
		return
	}

	ent, err := h.grant(account.ID, plan)
	if err != nil {
		log.WithError(err).Error("[PLANS] entitlement write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase failed"})
		return
	}
	log.WithFields(log.Fields{"account_id": account.ID, "plan": plan.Type, "reference": ent.Reference}).Info("[PLANS] purchased")
	c.JSON(http.StatusCreated, gin.H{"data": ent, "current_plan": plan.ID})
}

// grant deactivates prior entitlements and writes the new one with the
// fixed 30-day window.
func (h *Handler) grant(accountID int, plan *Plan) (*Entitlement, error) {
	if err := h.store.DeactivateForAccount(accountID); err != nil {
		return nil, err
	}
	now := h.now()
	ent := &Entitlement{
		AccountID: accountID,
		PlanType:  plan.Type,
		Reference: uuid.NewString(),
		StartDate: now,
		EndDate:   now.Add(EntitlementWindow),
		Active:    true,
	}
	if err := h.store.Create(ent); err != nil {
		return nil, err
	}
	return ent, nil
}
