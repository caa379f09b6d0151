package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

type Account struct {
	ID            int       `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	FullName      string    `db:"full_name"`
	Country       string    `db:"country"`
	DialCode      string    `db:"dial_code"`
	Phone         string    `db:"phone"`
	Block         string    `db:"block"`
	ApartmentName string    `db:"apartment_name"`
	ReferralCode  string    `db:"referral_code"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

var db *sql.DB

// Init sets the DB connection for migrations and queries
func Init(database *sql.DB) {
	db = database
}

// Migrate creates required tables if they do not exist
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	createAccounts := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(191) NOT NULL UNIQUE,
		password_hash VARCHAR(191) NOT NULL,
		full_name VARCHAR(100) NOT NULL,
		country VARCHAR(100) NOT NULL DEFAULT 'India',
		dial_code VARCHAR(10) NOT NULL DEFAULT '+91',
		phone VARCHAR(20) NOT NULL,
		block VARCHAR(10) NOT NULL,
		apartment_name VARCHAR(100) NOT NULL,
		referral_code VARCHAR(64) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createAccounts); err != nil {
		return err
	}

	createVehicles := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id INT AUTO_INCREMENT PRIMARY KEY,
		account_id INT NOT NULL UNIQUE,
		registration_number VARCHAR(20) NOT NULL,
		brand VARCHAR(50) NOT NULL DEFAULT '',
		make VARCHAR(50) NOT NULL DEFAULT '',
		class VARCHAR(20) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createVehicles); err != nil {
		return err
	}

	createEntitlements := `
	CREATE TABLE IF NOT EXISTS entitlements (
		id INT AUTO_INCREMENT PRIMARY KEY,
		account_id INT NOT NULL,
		plan_type VARCHAR(20) NOT NULL,
		reference VARCHAR(64) NOT NULL DEFAULT '',
		start_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		end_date DATETIME NOT NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createEntitlements); err != nil {
		return err
	}

	createUpdates := `
	CREATE TABLE IF NOT EXISTS service_updates (
		id INT AUTO_INCREMENT PRIMARY KEY,
		occurred_on DATE NOT NULL,
		display_time VARCHAR(10) NOT NULL DEFAULT '',
		wiper_name VARCHAR(100) NOT NULL,
		message VARCHAR(255) NOT NULL,
		avatar_letter CHAR(1) NOT NULL DEFAULT 'W',
		image_url VARCHAR(255) NOT NULL DEFAULT ''
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createUpdates); err != nil {
		return err
	}

	createFeedback := `
	CREATE TABLE IF NOT EXISTS feedback (
		id INT AUTO_INCREMENT PRIMARY KEY,
		account_id INT NOT NULL,
		rating INT NOT NULL DEFAULT 0,
		message TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createFeedback); err != nil {
		return err
	}
	return nil
}

// SeedSampleUpdates inserts a handful of service updates if the table is
// empty so the feed has content on a fresh install.
func SeedSampleUpdates() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM service_updates").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	rows := []struct {
		on, at, name, msg string
	}{
		{today, "8am", "Arun", "Hey I have cleaned your car"},
		{today, "5pm", "Arun", "Interior wipe done, looks fresh"},
		{yesterday, "8am", "Arun", "Hey I have cleaned your car"},
		{yesterday, "5pm", "Manu", "Rims polished along with the daily wipe"},
		{yesterday, "6pm", "Manu", "Hey I have cleaned your car"},
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO service_updates (occurred_on, display_time, wiper_name, message, avatar_letter) VALUES (?,?,?,?,?)`,
			r.on, r.at, r.name, r.msg, string(r.name[0]),
		); err != nil {
			return err
		}
	}
	return nil
}

// GetAccountByEmail retrieves an account from DB by email
func GetAccountByEmail(email string) *Account {
	if db == nil {
		return nil
	}
	row := db.QueryRow(`SELECT id, email, password_hash, full_name, country, dial_code, phone, block, apartment_name, IFNULL(referral_code,''), created_at, updated_at
		FROM accounts WHERE email = ? LIMIT 1`, email)
	return scanAccount(row)
}

// GetAccountByID retrieves an account by its ID
func GetAccountByID(id int) *Account {
	if db == nil {
		return nil
	}
	row := db.QueryRow(`SELECT id, email, password_hash, full_name, country, dial_code, phone, block, apartment_name, IFNULL(referral_code,''), created_at, updated_at
		FROM accounts WHERE id = ? LIMIT 1`, id)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) *Account {
	var a Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Country, &a.DialCode, &a.Phone, &a.Block, &a.ApartmentName, &a.ReferralCode, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil
	}
	return &a
}

// EmailExists checks if an account with the given email exists
func EmailExists(email string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM accounts WHERE email = ?", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAccount inserts a new account record and returns its id
func CreateAccount(a *Account) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("db is not initialized")
	}
	res, err := db.Exec(
		`INSERT INTO accounts (email, password_hash, full_name, country, dial_code, phone, block, apartment_name, referral_code) VALUES (?,?,?,?,?,?,?,?,?)`,
		a.Email, a.PasswordHash, a.FullName, a.Country, a.DialCode, a.Phone, a.Block, a.ApartmentName, a.ReferralCode,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = int(id)
	return a.ID, nil
}

// UpdateAccountPassword updates the password hash for the given account id
func UpdateAccountPassword(id int, hash string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE accounts SET password_hash = ?, updated_at = NOW() WHERE id = ?", hash, id)
	return err
}

// UpdateAccountProfile updates mutable profile fields. Empty values keep
// the current ones.
func UpdateAccountProfile(id int, fullName, phone, block, apartment string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	cur := GetAccountByID(id)
	if cur == nil {
		return fmt.Errorf("account not found")
	}
	if fullName == "" {
		fullName = cur.FullName
	}
	if phone == "" {
		phone = cur.Phone
	}
	if block == "" {
		block = cur.Block
	}
	if apartment == "" {
		apartment = cur.ApartmentName
	}
	_, err := db.Exec("UPDATE accounts SET full_name = ?, phone = ?, block = ?, apartment_name = ?, updated_at = NOW() WHERE id = ?",
		fullName, phone, block, apartment, id)
	return err
}

// InsertFeedback stores a feedback entry for an account
func InsertFeedback(accountID, rating int, message string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("INSERT INTO feedback (account_id, rating, message) VALUES (?,?,?)", accountID, rating, message)
	return err
}
