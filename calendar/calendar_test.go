package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateWeekSevenConsecutiveDays(t *testing.T) {
	start := date(2025, time.April, 28)
	days := GenerateWeek(start, date(2025, time.April, 30))

	require.Len(t, days, 7)
	for i, d := range days {
		want := start.AddDate(0, 0, i)
		assert.Equal(t, want.Day(), d.Day)
		assert.Equal(t, want.Month(), d.Month)
		assert.Equal(t, want.Weekday(), d.Weekday)
	}
	assert.False(t, days[0].IsToday)
	assert.True(t, days[2].IsToday)
}

func TestWeekNavigationRoundTrip(t *testing.T) {
	start := date(2025, time.March, 5)
	assert.Equal(t, start, NextWeekStart(PreviousWeekStart(start)))
	assert.Equal(t, date(2025, time.February, 26), PreviousWeekStart(start))
}

func TestIsHighlightedTrailingWindow(t *testing.T) {
	today := date(2025, time.May, 10)

	assert.True(t, IsHighlighted(today, today))
	assert.True(t, IsHighlighted(date(2025, time.May, 9), today))
	assert.True(t, IsHighlighted(date(2025, time.May, 8), today))
	// Boundary: exactly three days back falls outside.
	assert.False(t, IsHighlighted(date(2025, time.May, 7), today))
	assert.False(t, IsHighlighted(date(2025, time.May, 11), today))
}

func TestIsHighlightedAcrossMonthBoundary(t *testing.T) {
	today := date(2025, time.May, 1)
	assert.True(t, IsHighlighted(date(2025, time.April, 30), today))
	assert.True(t, IsHighlighted(date(2025, time.April, 29), today))
	assert.False(t, IsHighlighted(date(2025, time.April, 28), today))
}

func TestRangeLabel(t *testing.T) {
	sameMonth := GenerateWeek(date(2025, time.April, 1), date(2025, time.April, 1))
	assert.Equal(t, "1 - Apr 7", RangeLabel(sameMonth))

	crossMonth := GenerateWeek(date(2025, time.April, 28), date(2025, time.April, 28))
	assert.Equal(t, "Apr 28 - May 4", RangeLabel(crossMonth))
}

func TestWidgetStatePrecedence(t *testing.T) {
	now := date(2025, time.May, 10)
	w := NewWidget(date(2025, time.May, 7), func() time.Time { return now })
	w.Select(date(2025, time.May, 10))

	days := w.Days()
	// Selected wins even over today.
	assert.Equal(t, StateSelected, w.StateFor(days[3]))
	// May 9 sits in the lookback window.
	assert.Equal(t, StateHighlighted, w.StateFor(days[2]))
	// May 7 is exactly three days back: plain.
	assert.Equal(t, StatePlain, w.StateFor(days[0]))
	assert.Equal(t, StatePlain, w.StateFor(days[6]))

	w.Select(date(2025, time.May, 12))
	days = w.Days()
	assert.Equal(t, StateToday, w.StateFor(days[3]))
	assert.Equal(t, StateSelected, w.StateFor(days[5]))
}

func TestWidgetSelectNotifiesListener(t *testing.T) {
	w := NewWidget(date(2025, time.May, 7), nil)
	var got time.Time
	w.OnSelect(func(d time.Time) { got = d })
	w.Select(date(2025, time.May, 9))
	assert.Equal(t, date(2025, time.May, 9), got)
}

func TestWidgetNavigationMovesWindow(t *testing.T) {
	w := NewWidget(date(2025, time.May, 7), nil)
	w.NextWeek()
	assert.Equal(t, date(2025, time.May, 14), w.Start())
	w.PreviousWeek()
	w.PreviousWeek()
	assert.Equal(t, date(2025, time.April, 30), w.Start())
}

func TestWeekEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler()
	h.Now = func() time.Time { return date(2025, time.April, 30) }
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/calendar/week?start=2025-04-28&selected=2025-04-29", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		RangeLabel string `json:"range_label"`
		Start      string `json:"start"`
		Previous   string `json:"previous"`
		Next       string `json:"next"`
		Days       []struct {
			Day     int    `json:"day"`
			Weekday string `json:"weekday"`
			IsToday bool   `json:"is_today"`
			State   string `json:"state"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Apr 28 - May 4", body.RangeLabel)
	assert.Equal(t, "2025-04-28", body.Start)
	assert.Equal(t, "2025-04-21", body.Previous)
	assert.Equal(t, "2025-05-05", body.Next)
	require.Len(t, body.Days, 7)
	assert.Equal(t, "Mon", body.Days[0].Weekday)
	assert.Equal(t, "selected", body.Days[1].State)
	assert.True(t, body.Days[2].IsToday)
	assert.Equal(t, "today", body.Days[2].State)
}

func TestWeekEndpointRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler().RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/calendar/week?start=not-a-date", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
