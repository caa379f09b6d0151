package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// StripeService creates checkout sessions for card payments. Optional:
// when STRIPE_SECRET_KEY is not set the service is nil and the cash
// purchase path is the only one wired.
type StripeService struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	sc            *client.API
	invalidKey    bool // once detected, short-circuit further remote calls
}

var ErrStripeInvalidAPIKey = errors.New("stripe_invalid_api_key")

func maskKey(k string) string {
	if len(k) < 12 {
		return "****"
	}
	return k[:7] + "..." + k[len(k)-4:]
}

// NewStripeFromEnv returns a configured service or nil when missing env vars.
func NewStripeFromEnv() *StripeService {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil
	}
	success := os.Getenv("STRIPE_SUCCESS_URL")
	if success == "" {
		// Default success marker consumed by the app webview
		success = "https://example.com/checkout/success"
	}
	cancel := os.Getenv("STRIPE_CANCEL_URL")
	if cancel == "" {
		cancel = "https://example.com/checkout/cancel"
	}
	sc := &client.API{}
	sc.Init(key, nil)
	return &StripeService{
		secretKey:     key,
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		successURL:    success,
		cancelURL:     cancel,
		sc:            sc,
	}
}

// CreateCheckoutSession opens a one-off Stripe Checkout for a plan. The
// 30-day window starts when the session completes, so a subscription
// price object is not needed; the line item carries inline price data.
func (s *StripeService) CreateCheckoutSession(accountID int, plan *Plan) (string, string, error) {
	if s == nil {
		return "", "", errors.New("stripe not configured")
	}
	if s.invalidKey {
		return "", "", ErrStripeInvalidAPIKey
	}
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("inr"),
				UnitAmount: stripe.Int64(plan.Amount * 100),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Wiper " + plan.Type + " plan"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"account_id": strconv.Itoa(accountID),
			"plan_type":  plan.Type,
		},
	}
	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && (se.HTTPStatusCode == 401 || strings.Contains(strings.ToLower(se.Msg), "invalid api key")) {
			log.Errorf("[STRIPE][checkout] invalid api key (%s): %v", maskKey(s.secretKey), se)
			s.invalidKey = true
			return "", "", ErrStripeInvalidAPIKey
		}
		log.Errorf("[STRIPE][checkout] error: %v", err)
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// parseWebhook verifies the signature when a webhook secret is set and
// extracts the purchase metadata from a completed checkout event.
func (s *StripeService) parseWebhook(payload []byte, sig string) (accountID int, planType string, completed bool, err error) {
	if s == nil {
		return 0, "", false, errors.New("stripe not configured")
	}
	if s.webhookSecret != "" {
		if _, err := webhook.ConstructEvent(payload, sig, s.webhookSecret); err != nil {
			return 0, "", false, fmt.Errorf("invalid signature: %w", err)
		}
	}
	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				Metadata map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return 0, "", false, err
	}
	if event.Type != "checkout.session.completed" {
		return 0, "", false, nil
	}
	accountID, _ = strconv.Atoi(event.Data.Object.Metadata["account_id"])
	planType = event.Data.Object.Metadata["plan_type"]
	if accountID == 0 || planType == "" {
		return 0, "", false, errors.New("incomplete metadata")
	}
	return accountID, planType, true, nil
}

// sessionMetadata queries Stripe for a session and reports completion.
func (s *StripeService) sessionMetadata(sessionID string) (accountID int, planType string, complete bool, err error) {
	if s == nil {
		return 0, "", false, errors.New("stripe not configured")
	}
	if sessionID == "" {
		return 0, "", false, errors.New("session_id required")
	}
	sess, err := s.sc.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return 0, "", false, err
	}
	if sess.Status != stripe.CheckoutSessionStatusComplete {
		return 0, "", false, nil
	}
	accountID, _ = strconv.Atoi(sess.Metadata["account_id"])
	planType = sess.Metadata["plan_type"]
	if accountID == 0 || planType == "" {
		return 0, "", false, errors.New("incomplete metadata")
	}
	return accountID, planType, true, nil
}

type checkoutPayload struct {
	PlanType string `json:"plan_type"`
}

func (h *Handler) checkout(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p checkoutPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	plan := PlanByType(p.PlanType)
	if plan == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}
	url, sessionID, err := h.stripe.CreateCheckoutSession(account.ID, plan)
	if err != nil {
		if errors.Is(err, ErrStripeInvalidAPIKey) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Card payments unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start checkout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout_url": url, "session_id": sessionID})
}

// webhook grants the entitlement when Stripe reports the session done.
func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	accountID, planType, completed, err := h.stripe.parseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.WithError(err).Warn("[STRIPE] webhook rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook"})
		return
	}
	if !completed {
		c.String(http.StatusOK, "ignored")
		return
	}
	if err := h.grantChecked(accountID, planType); err != nil {
		log.WithError(err).Error("[STRIPE] entitlement write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record purchase"})
		return
	}
	c.String(http.StatusOK, "ok")
}

// confirm lets the app poll after the webview closes; idempotent with
// the webhook.
func (h *Handler) confirm(c *gin.Context) {
	accountID, planType, complete, err := h.stripe.sessionMetadata(c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not confirm session"})
		return
	}
	if !complete {
		c.JSON(http.StatusOK, gin.H{"complete": false})
		return
	}
	if err := h.grantChecked(accountID, planType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record purchase"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complete": true})
}

// grantChecked skips the write when the same plan is already active.
func (h *Handler) grantChecked(accountID int, planType string) error {
	plan := PlanByType(planType)
	if plan == nil {
		return fmt.Errorf("unknown plan %q", planType)
	}
	if existing, err := h.store.ActiveForAccount(accountID); err == nil && existing != nil && existing.PlanType == plan.Type {
		return nil
	}
	_, err := h.grant(accountID, plan)
	return err
}
