package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredential is the single machine-local admin code record, persisted
// in the embedded sqlite database rather than the remote store.
type AdminCredential struct {
	ID        uint   `gorm:"primaryKey"`
	CodeHash  string `gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time
}

func (AdminCredential) TableName() string {
	return "admin_credentials"
}

// SetCode hashes and sets the admin code.
func (a *AdminCredential) SetCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.CodeHash = string(hash)
	return nil
}

// CheckCode verifies a candidate code against the stored hash.
func (a *AdminCredential) CheckCode(code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.CodeHash), []byte(code)) == nil
}

// Valid reports whether the stored hash is usable at all; a corrupt record
// is replaced with the default code on load.
func (a *AdminCredential) Valid() bool {
	_, err := bcrypt.Cost([]byte(a.CodeHash))
	return err == nil
}
