package login

import (
	"net/http"
	"strings"
	"time"

	mailer "wiper-backend/email"
	"wiper-backend/migrations"
	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/login", h.login)
	r.GET("/session", h.session)
	r.POST("/logout", h.logout)
	r.POST("/change-password", h.changePassword)
}

func (h *Handler) login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	creds.Password = strings.TrimSpace(creds.Password)
	if creds.Email == "" || creds.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter both email and password"})
		return
	}

	account := migrations.GetAccountByEmail(creds.Email)
	if account == nil || !session.CheckPassword(creds.Password, account.PasswordHash) {
		log.WithField("email", creds.Email).Info("[LOGIN] invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	dur := session.Durations(creds.Remember)
	token, exp, err := h.sessions.Sign(account.Email, dur, creds.Remember)
	if err != nil {
		log.WithError(err).Error("[LOGIN] token signing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"user":       AccountResponse(account),
		"expires_at": exp,
		"remember":   creds.Remember,
	})
}

func (h *Handler) session(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}
	email, ok := h.sessions.EmailFromToken(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	account := migrations.GetAccountByEmail(email)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": AccountResponse(account)})
}

func (h *Handler) logout(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}
	h.sessions.Revoke(token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type changePasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var p changePasswordPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	email, ok := h.sessions.EmailFromToken(token)
	if !ok || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	account := migrations.GetAccountByEmail(email)
	if account == nil || !session.CheckPassword(p.OldPassword, account.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if p.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password is required"})
		return
	}
	hash, err := session.HashPassword(p.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}
	if err := migrations.UpdateAccountPassword(account.ID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}
	if err := mailer.SendPasswordChanged(account.Email); err != nil {
		log.WithError(err).WithField("email", account.Email).Warn("[LOGIN] password change mail failed")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// AccountResponse is the user payload shape the app expects on login,
// session and profile responses.
func AccountResponse(a *migrations.Account) gin.H {
	if a == nil {
		return nil
	}
	return gin.H{
		"id":             a.ID,
		"email":          a.Email,
		"full_name":      a.FullName,
		"country":        a.Country,
		"phone":          a.DialCode + a.Phone,
		"block":          a.Block,
		"apartment_name": a.ApartmentName,
		"referral_code":  a.ReferralCode,
		"created_at":     a.CreatedAt.Format(time.RFC3339),
		"updated_at":     a.UpdatedAt.Format(time.RFC3339),
	}
}
