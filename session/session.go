package session

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the decoded session payload.
type Claims struct {
	Email    string
	Exp      int64
	Remember bool
	JTI      string
}

// Service signs and validates session tokens and hashes passwords.
type Service struct {
	secret []byte

	// jti blacklist for manual logout (jti -> expiry). Not persisted.
	mu        sync.Mutex
	blacklist map[string]int64
}

// NewService builds a Service from SESSION_SECRET.
func NewService() *Service {
	s := os.Getenv("SESSION_SECRET")
	if s == "" {
		s = "dev-insecure-secret"
	}
	return &Service{secret: []byte(s), blacklist: map[string]int64{}}
}

// Durations returns the session lifetime: 12h by default, 30 days with
// the remember flag. Both are env-overridable.
func Durations(remember bool) time.Duration {
	defHours := 12
	if v := os.Getenv("SESSION_DEFAULT_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			defHours = n
		}
	}
	remDays := 30
	if v := os.Getenv("SESSION_REMEMBER_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			remDays = n
		}
	}
	if remember {
		return time.Hour * 24 * time.Duration(remDays)
	}
	return time.Hour * time.Duration(defHours)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Sign issues a token for the given email and returns it with its expiry.
func (s *Service) Sign(email string, dur time.Duration, remember bool) (string, int64, error) {
	exp := time.Now().Add(dur).Unix()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   exp,
		"iat":   time.Now().Unix(),
		"rem":   remember,
		"jti":   uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, exp, nil
}

// Parse validates signature, expiry and the logout blacklist.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, ok := mc["email"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	jti, _ := mc["jti"].(string)
	rem, _ := mc["rem"].(bool)

	s.mu.Lock()
	blkExp, blocked := s.blacklist[jti]
	s.mu.Unlock()
	if blocked && blkExp >= time.Now().Unix() {
		return nil, ErrInvalidToken
	}
	return &Claims{Email: email, Exp: int64(exp), Remember: rem, JTI: jti}, nil
}

// Revoke blacklists a token until its natural expiry (best effort).
func (s *Service) Revoke(tokenString string) {
	c, err := s.Parse(tokenString)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.blacklist[c.JTI] = c.Exp
	s.mu.Unlock()
}

// EmailFromToken validates the token and returns the session email.
func (s *Service) EmailFromToken(tokenString string) (string, bool) {
	c, err := s.Parse(tokenString)
	if err != nil {
		return "", false
	}
	return c.Email, true
}
