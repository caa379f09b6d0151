package session

import (
	"net/http"

	"wiper-backend/migrations"

	"github.com/gin-gonic/gin"
)

const accountKey = "session_account"

// Required resolves the bearer token into an account and aborts with 401
// when the session is missing or invalid.
func (s *Service) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}
		email, ok := s.EmailFromToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		account := migrations.GetAccountByEmail(email)
		if account == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		SetAccount(c, account)
		c.Next()
	}
}

// SetAccount attaches the resolved account to the request context.
func SetAccount(c *gin.Context, a *migrations.Account) {
	c.Set(accountKey, a)
}

// AccountFrom returns the account resolved by Required.
func AccountFrom(c *gin.Context) (*migrations.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*migrations.Account)
	return a, ok
}
