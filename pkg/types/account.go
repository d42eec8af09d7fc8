package types

import "time"

// Account is a registered resident or staff member. The 13-digit national
// ID number is the sole login identifier and is immutable once created.
type Account struct {
	ID          string `db:"id"`
	IDNumber    string `db:"id_number"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	PhoneNumber string `db:"phone_number"`
	Address     string `db:"address"`

	PasswordHash string `db:"password_hash"`

	IsActive    bool `db:"is_active"`
	IsStaff     bool `db:"is_staff"`
	IsSuperuser bool `db:"is_superuser"`

	PasswordResetToken *string `db:"password_reset_token"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (a *Account) FullName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	}
	return a.IDNumber
}
