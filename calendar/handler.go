package calendar

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves week descriptors for the reports screen. Now is
// injectable so tests can pin the clock.
type Handler struct {
	Now func() time.Time
}

func NewHandler() *Handler {
	return &Handler{Now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/calendar/week", h.week)
}

func (h *Handler) week(c *gin.Context) {
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

	w := NewWidget(start, func() time.Time { return now })
	w.Select(selected)
	days := w.Days()
	out := make([]gin.H, 0, len(days))
	for _, d := range days {
		out = append(out, gin.H{
			"day":      d.Day,
			"weekday":  d.Weekday.String()[:3],
			"date":     d.Date.Format("2006-01-02"),
			"is_today": d.IsToday,
			"state":    w.StateFor(d),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"range_label": w.RangeLabel(),
		"start":       Midnight(start).Format("2006-01-02"),
		"previous":    PreviousWeekStart(start).Format("2006-01-02"),
		"next":        NextWeekStart(start).Format("2006-01-02"),
		"days":        out,
	})
}
