package marketing

import (
	"database/sql"
	"time"

	"wiper-backend/email"

	log "github.com/sirupsen/logrus"
)

// reminderWindowDays is how close to expiry an entitlement has to be
// before the owner gets a renewal mail.
const reminderWindowDays = 3

// Service runs the daily expiry-reminder campaign.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Start launches a ticker that checks once a day for plans close to
// their end date.
func (s *Service) Start() {
	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		for range ticker.C {
			if err := s.notifyExpiring(); err != nil {
				log.WithError(err).Error("[MARKETING] expiry reminder run failed")
			}
		}
	}()
}

// notifyExpiring mails every account whose active entitlement ends
// within the reminder window.
func (s *Service) notifyExpiring() error {
	rows, err := s.db.Query(`SELECT a.email, e.plan_type, e.end_date FROM accounts a
        JOIN entitlements e ON a.id = e.account_id
        WHERE e.active = 1 AND e.end_date BETWEEN NOW() AND DATE_ADD(NOW(), INTERVAL ? DAY)`,
		reminderWindowDays)
	if err != nil {
		return err
	}
	defer rows.Close()

	now := time.Now()
	for rows.Next() {
		var mail, planType string
		var endDate time.Time
		if err := rows.Scan(&mail, &planType, &endDate); err != nil {
			return err
		}
		daysLeft := int(endDate.Sub(now).Hours() / 24)
		if daysLeft < 1 {
			daysLeft = 1
		}
		if err := email.SendExpiryReminder(mail, planType, daysLeft); err != nil {
			log.WithError(err).WithField("to", mail).Warn("[MARKETING] reminder mail failed")
		}
	}
	return rows.Err()
}
