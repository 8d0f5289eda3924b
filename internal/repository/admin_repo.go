package repository

import (
	"errors"
	"fmt"

	"go-kopi-machine/internal/model"

	"gorm.io/gorm"
)

type AdminCodeRepository interface {
	// Load returns the stored credential, replacing a missing or corrupt
	// record with the default code first.
	Load(defaultCode string) (*model.AdminCredential, error)
	Save(cred *model.AdminCredential) error
}

type adminCodeRepo struct {
	db *gorm.DB
}

func NewAdminCodeRepo(db *gorm.DB) AdminCodeRepository {
	return &adminCodeRepo{db}
}

func (r *adminCodeRepo) Load(defaultCode string) (*model.AdminCredential, error) {
	var cred model.AdminCredential
	err := r.db.First(&cred).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading admin credential: %w", err)
	}
	if err == nil && cred.Valid() {
		return &cred, nil
	}
	// Missing or unreadable hash: fall back to the default code.
	if setErr := cred.SetCode(defaultCode); setErr != nil {
		return nil, setErr
	}
	if saveErr := r.Save(&cred); saveErr != nil {
		return nil, saveErr
	}
	return &cred, nil
}

func (r *adminCodeRepo) Save(cred *model.AdminCredential) error {
	return r.db.Save(cred).Error
}
