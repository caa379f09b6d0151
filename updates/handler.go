package updates

import (
	"net/http"
	"time"

	"wiper-backend/plans"
	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const feedLimit = 50

// Store is what the handler needs; satisfied by Repository.
type Store interface {
	ListRecent(limit int) ([]ServiceUpdate, error)
	CountCleanedDays(since time.Time) (int, error)
}

// EntitlementGate hides the feed from accounts without an active plan.
type EntitlementGate interface {
	ActiveForAccount(accountID int) (*plans.Entitlement, error)
}

type Handler struct {
	store Store
	gate  EntitlementGate
	Now   func() time.Time
}

func NewHandler(store Store, gate EntitlementGate) *Handler {
	return &Handler{store: store, gate: gate, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/updates", h.feed)
}

func (h *Handler) feed(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	ent, err := h.gate.ActiveForAccount(account.ID)
	if err != nil {
		log.WithError(err).Error("[UPDATES] entitlement lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load updates"})
		return
	}
	if ent == nil {
		// Empty state, not an error: the client shows the plans CTA.
		c.JSON(http.StatusOK, gin.H{
			"data":          []Group{},
			"requires_plan": true,
			"message":       "Pick a plan to start receiving daily updates",
		})
		return
	}
	items, err := h.store.ListRecent(feedLimit)
	if err != nil {
		log.WithError(err).Error("[UPDATES] feed query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load updates"})
		return
	}
	cleaned, err := h.store.CountCleanedDays(ent.StartDate)
	if err != nil {
		log.WithError(err).Warn("[UPDATES] cleaned-days count failed")
		cleaned = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"data":          GroupByDay(items, h.Now()),
		"requires_plan": false,
		"cleaned_days":  cleaned,
	})
}
