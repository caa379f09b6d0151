package reports

import (
	"net/http"
	"time"

	"wiper-backend/calendar"
	"wiper-backend/plans"
	"wiper-backend/session"
	"wiper-backend/updates"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const feedLimit = 50

// UpdateStore feeds the report list.
type UpdateStore interface {
	ListRecent(limit int) ([]updates.ServiceUpdate, error)
}

// EntitlementGate applies the same plan gate as the home feed.
type EntitlementGate interface {
	ActiveForAccount(accountID int) (*plans.Entitlement, error)
}

// Handler serves the report screen: the week calendar strip plus the
// grouped updates below it, in one roundtrip.
type Handler struct {
	store UpdateStore
	gate  EntitlementGate
	Now   func() time.Time
}

func NewHandler(store UpdateStore, gate EntitlementGate) *Handler {
	return &Handler{store: store, gate: gate, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/reports", h.report)
}

func (h *Handler) report(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	now := h.Now()
	start := now
	if v := c.Query("start"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
			return
		}
		start = parsed
	}
	selected := start
	if v := c.Query("selected"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid selected date"})
			return
		}
		selected = parsed
	}

	w := calendar.NewWidget(start, func() time.Time { return now })
	w.Select(selected)
	days := w.Days()
	week := make([]gin.H, 0, len(days))
	for _, d := range days {
		week = append(week, gin.H{
			"day":      d.Day,
			"weekday":  d.Weekday.String()[:3],
			"date":     d.Date.Format("2006-01-02"),
			"is_today": d.IsToday,
			"state":    w.StateFor(d),
		})
	}

	ent, err := h.gate.ActiveForAccount(account.ID)
	if err != nil {
		log.WithError(err).Error("[REPORTS] entitlement lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load report"})
		return
	}
	if ent == nil {
		c.JSON(http.StatusOK, gin.H{
			"range_label":   w.RangeLabel(),
			"days":          week,
			"data":          []updates.Group{},
			"requires_plan": true,
		})
		return
	}
	items, err := h.store.ListRecent(feedLimit)
	if err != nil {
		log.WithError(err).Error("[REPORTS] feed query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"range_label":   w.RangeLabel(),
		"days":          week,
		"data":          updates.GroupByDay(items, now),
		"requires_plan": false,
	})
}
