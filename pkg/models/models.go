package models

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Field limits shared by the auth service and the handlers.
const (
	MaxNameLen     = 20
	MaxUsernameLen = 20
	MaxTitleLen    = 60
	YearLen        = 4
)

// Known values for User.Group. The field is informational only; no
// authorization decision reads it.
const (
	GroupAdmin    = "admin"
	GroupOperator = "operator"
	GroupUser     = "user"
)

var ErrInvalidField = errors.New("invalid field")

type User struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:20" json:"name"`
	Username     string    `gorm:"unique;size:20" json:"username"`
	PasswordHash string    `json:"-"`
	Group        string    `gorm:"size:16" json:"group"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Movie struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Title     string    `gorm:"size:60" json:"title"`
	Year      string    `gorm:"size:4" json:"year"`
	BelongsTo string    `gorm:"index" json:"belongs_to"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateMovieFields checks the create/edit rules: a non-empty title of at
// most 60 characters and a year of exactly 4 characters. Lengths count runes
// so multi-byte titles measure the way users see them.
func ValidateMovieFields(title, year string) error {
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrInvalidField
	}
	if utf8.RuneCountInString(year) != YearLen {
		return ErrInvalidField
	}
	return nil
}

// ValidateName checks the display name rule used by the settings flow.
func ValidateName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLen {
		return ErrInvalidField
	}
	return nil
}

// ValidateCredentials checks the registration rules for a login handle and
// password.
func ValidateCredentials(username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidField
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return ErrInvalidField
	}
	return nil
}
