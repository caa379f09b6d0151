package register

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Country is the dropdown model for the contact step.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dial_code"`
}

var countries = []Country{
	{Name: "India", Code: "IN", DialCode: "+91"},
	{Name: "United States", Code: "US", DialCode: "+1"},
	{Name: "United Kingdom", Code: "GB", DialCode: "+44"},
	{Name: "Australia", Code: "AU", DialCode: "+61"},
	{Name: "Canada", Code: "CA", DialCode: "+1"},
	{Name: "Germany", Code: "DE", DialCode: "+49"},
	{Name: "France", Code: "FR", DialCode: "+33"},
	{Name: "Japan", Code: "JP", DialCode: "+81"},
	{Name: "China", Code: "CN", DialCode: "+86"},
	{Name: "Brazil", Code: "BR", DialCode: "+55"},
}

var blocks = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

var apartments = []string{
	"Lake View", "Garden View", "City View", "Mountain View", "Park Side", "River Side",
}

// options serves the static dropdown data the residence and contact steps
// render. Extend from DB when apartments become dynamic.
func (h *Handler) options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"countries":  countries,
		"blocks":     blocks,
		"apartments": apartments,
	})
}
