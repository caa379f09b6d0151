package plans

import (
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ActiveForAccount returns the account's newest active entitlement, or
// nil when there is none. The filter deliberately checks the active flag
// only, not expiry; lapsed rows keep granting access until an operator
// flips them (see DESIGN.md).
func (r *Repository) ActiveForAccount(accountID int) (*Entitlement, error) {
	row := r.db.QueryRow(`SELECT id, account_id, plan_type, reference, start_date, end_date, active
		FROM entitlements WHERE account_id=? AND active=1 ORDER BY id DESC LIMIT 1`, accountID)
	var e Entitlement
	if err := row.Scan(&e.ID, &e.AccountID, &e.PlanType, &e.Reference, &e.StartDate, &e.EndDate, &e.Active); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts the entitlement row.
func (r *Repository) Create(e *Entitlement) error {
	res, err := r.db.Exec(`INSERT INTO entitlements (account_id, plan_type, reference, start_date, end_date, active) VALUES (?,?,?,?,?,?)`,
		e.AccountID, e.PlanType, e.Reference, e.StartDate, e.EndDate, e.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = int(id)
	return nil
}

// DeactivateForAccount clears any prior active rows so at most one
// entitlement is active per account after a purchase.
func (r *Repository) DeactivateForAccount(accountID int) error {
	_, err := r.db.Exec(`UPDATE entitlements SET active=0 WHERE account_id=? AND active=1`, accountID)
	return err
}
