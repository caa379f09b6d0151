package updates

import (
	"database/sql"
	"time"
)

// ServiceUpdate is one feed item: a wiper telling the owner the car got
// cleaned.
type ServiceUpdate struct {
	ID           int       `json:"id"`
	OccurredOn   time.Time `json:"occurred_on"`
	DisplayTime  string    `json:"time"`
	WiperName    string    `json:"wiper_name"`
	Message      string    `json:"message"`
	AvatarLetter string    `json:"avatar_letter"`
	ImageURL     string    `json:"image_url"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListRecent returns updates newest day first, keeping insertion order
// inside a day.
func (r *Repository) ListRecent(limit int) ([]ServiceUpdate, error) {
	rows, err := r.db.Query(`SELECT id, occurred_on, display_time, wiper_name, message, avatar_letter, image_url
		FROM service_updates ORDER BY occurred_on DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ServiceUpdate{}
	for rows.Next() {
		var u ServiceUpdate
		if err := rows.Scan(&u.ID, &u.OccurredOn, &u.DisplayTime, &u.WiperName, &u.Message, &u.AvatarLetter, &u.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// CountCleanedDays counts distinct service days since the given date,
// the "your car has been cleaned for N days" figure.
func (r *Repository) CountCleanedDays(since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(DISTINCT occurred_on) FROM service_updates WHERE occurred_on >= ?`,
		since.Format("2006-01-02")).Scan(&count)
	return count, err
}
