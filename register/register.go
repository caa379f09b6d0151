package register

import (
	"errors"
	"net/http"
	"strings"

	mailer "wiper-backend/email"
	"wiper-backend/migrations"
	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Form is the accumulated state of the 4-step signup wizard. The client
// keeps it locally between steps; nothing is persisted until the final
// submit succeeds.
type Form struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Country         string `json:"country"`
	CountryCode     string `json:"country_code"`
	PhoneNumber     string `json:"phone_number"`
	FullName        string `json:"full_name"`
	ConfirmPassword string `json:"confirm_password"`
	ReferralCode    string `json:"referral_code"`
	Block           string `json:"block"`
	ApartmentName   string `json:"apartment_name"`
}

const (
	StepCredentials = 1
	StepContact     = 2
	StepIdentity    = 3
	StepResidence   = 4
)

var (
	ErrCredentialsRequired = errors.New("Email and password are required")
	ErrPhoneRequired       = errors.New("Phone number is required")
	ErrFullNameRequired    = errors.New("Full name is required")
	ErrPasswordMismatch    = errors.New("Passwords do not match")
	ErrResidenceRequired   = errors.New("Block and apartment name are required")
	ErrUnknownStep         = errors.New("Unknown step")
)

// ValidateStep applies the gate for one wizard step. A nil result means
// the client may advance; otherwise the error text is the single
// user-visible message for that step.
func ValidateStep(step int, f Form) error {
	switch step {
	case StepCredentials:
		if f.Email == "" || f.Password == "" {
			return ErrCredentialsRequired
		}
	case StepContact:
		if f.PhoneNumber == "" {
			return ErrPhoneRequired
		}
	case StepIdentity:
		if f.FullName == "" {
			return ErrFullNameRequired
		}
		if f.Password != f.ConfirmPassword {
			return ErrPasswordMismatch
		}
	case StepResidence:
		if f.Block == "" || f.ApartmentName == "" {
			return ErrResidenceRequired
		}
	default:
		return ErrUnknownStep
	}
	return nil
}

// ValidateAll runs every step gate in order; the first failure wins.
func ValidateAll(f Form) error {
	for step := StepCredentials; step <= StepResidence; step++ {
		if err := ValidateStep(step, f); err != nil {
			return err
		}
	}
	return nil
}

type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/register/validate", h.validateStep)
	r.POST("/register", h.register)
	r.GET("/register/options", h.options)
}

type validatePayload struct {
	Step int  `json:"step"`
	Form Form `json:"form"`
}

func (h *Handler) validateStep(c *gin.Context) {
	var p validatePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := ValidateStep(p.Step, p.Form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "step": p.Step})
}

func (h *Handler) register(c *gin.Context) {
	var f Form
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	f.Email = strings.TrimSpace(strings.ToLower(f.Email))
	if err := ValidateAll(f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if exists, err := migrations.EmailExists(f.Email); err != nil {
		log.WithError(err).Error("[REGISTER] email lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	} else if exists {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "This email is already registered"})
		return
	}

	hash, err := session.HashPassword(f.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	country := f.Country
	if country == "" {
		country = "India"
	}
	dial := f.CountryCode
	if dial == "" {
		dial = "+91"
	}
	referral := f.ReferralCode
	if referral == "" {
		referral = uuid.NewString()
	}
	account := &migrations.Account{
		Email:         f.Email,
		PasswordHash:  hash,
		FullName:      f.FullName,
		Country:       country,
		DialCode:      dial,
		Phone:         f.PhoneNumber,
		Block:         f.Block,
		ApartmentName: f.ApartmentName,
		ReferralCode:  referral,
	}
	if _, err := migrations.CreateAccount(account); err != nil {
		log.WithError(err).Error("[REGISTER] account insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if err := mailer.SendWelcome(account.Email); err != nil {
		log.WithError(err).WithField("email", account.Email).Warn("[REGISTER] welcome mail failed")
	}

	// Land the user authenticated on /home: hand back a session right away.
	token, exp, err := h.sessions.Sign(account.Email, session.Durations(false), false)
	if err != nil {
		log.WithError(err).Error("[REGISTER] token signing failed")
		c.JSON(http.StatusCreated, gin.H{"user": gin.H{"id": account.ID, "email": account.Email}})
		return
	}
	log.WithFields(log.Fields{"id": account.ID, "email": account.Email}).Info("[REGISTER] account created")
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_at": exp,
		"user": gin.H{
			"id":             account.ID,
			"email":          account.Email,
			"full_name":      account.FullName,
			"phone":          account.DialCode + account.Phone,
			"block":          account.Block,
			"apartment_name": account.ApartmentName,
			"referral_code":  account.ReferralCode,
		},
	})
}
