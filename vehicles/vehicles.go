package vehicles

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"wiper-backend/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Vehicle is the single car record attached to an account.
type Vehicle struct {
	ID                 int       `json:"id"`
	AccountID          int       `json:"account_id"`
	RegistrationNumber string    `json:"registration_number"`
	Brand              string    `json:"brand"`
	Make               string    `json:"make"`
	Class              string    `json:"class"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ForAccount returns the account's vehicle, or nil when none exists.
func (r *Repository) ForAccount(accountID int) (*Vehicle, error) {
	row := r.db.QueryRow(`SELECT id, account_id, registration_number, brand, make, class, created_at, updated_at
		FROM vehicles WHERE account_id=? LIMIT 1`, accountID)
	var v Vehicle
	if err := row.Scan(&v.ID, &v.AccountID, &v.RegistrationNumber, &v.Brand, &v.Make, &v.Class, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Upsert inserts the vehicle or updates the existing row; an account
// keeps at most one vehicle record.
func (r *Repository) Upsert(v *Vehicle) error {
	existing, err := r.ForAccount(v.AccountID)
	if err != nil {
		return err
	}
	if existing == nil {
		res, err := r.db.Exec(`INSERT INTO vehicles (account_id, registration_number, brand, make, class) VALUES (?,?,?,?,?)`,
			v.AccountID, v.RegistrationNumber, v.Brand, v.Make, v.Class)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		v.ID = int(id)
		return nil
	}
	v.ID = existing.ID
	_, err = r.db.Exec(`UPDATE vehicles SET registration_number=?, brand=?, make=?, class=?, updated_at=NOW() WHERE id=?`,
		v.RegistrationNumber, v.Brand, v.Make, v.Class, existing.ID)
	return err
}

// Store is what the handler needs; satisfied by Repository.
type Store interface {
	ForAccount(accountID int) (*Vehicle, error)
	Upsert(v *Vehicle) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/vehicle", h.get)
	r.PUT("/vehicle", h.upsert)
}

func (h *Handler) get(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	v, err := h.store.ForAccount(account.ID)
	if err != nil {
		log.WithError(err).Error("[VEHICLE] lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load vehicle"})
		return
	}
	if v == nil {
		// Not an error: the client renders the capture call-to-action.
		c.JSON(http.StatusOK, gin.H{"data": nil, "has_vehicle": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v, "has_vehicle": true})
}

type upsertPayload struct {
	RegistrationNumber string `json:"registration_number"`
	Brand              string `json:"brand"`
	Make               string `json:"make"`
	Class              string `json:"class"`
}

func (h *Handler) upsert(c *gin.Context) {
	account, ok := session.AccountFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
		return
	}
	var p upsertPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	p.RegistrationNumber = strings.TrimSpace(p.RegistrationNumber)
	if p.RegistrationNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registration number is required"})
		return
	}
	v := &Vehicle{
		AccountID:          account.ID,
		RegistrationNumber: p.RegistrationNumber,
		Brand:              strings.TrimSpace(p.Brand),
		Make:               strings.TrimSpace(p.Make),
		Class:              strings.TrimSpace(p.Class),
	}
	if err := h.store.Upsert(v); err != nil {
		log.WithError(err).Error("[VEHICLE] upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save vehicle"})
		return
	}
	log.WithFields(log.Fields{"account_id": account.ID, "registration": v.RegistrationNumber}).Info("[VEHICLE] saved")
	c.JSON(http.StatusOK, gin.H{"data": v})
}
