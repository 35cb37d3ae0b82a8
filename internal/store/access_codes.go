package store

import (
	"context"
	"errors"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"gorm.io/gorm"
)

// AccessCodeStore is the gorm-backed services.AccessCodeRepository.
type AccessCodeStore struct {
	DB *gorm.DB
}

// NewAccessCodeStore creates an AccessCodeStore.
func NewAccessCodeStore(db *gorm.DB) *AccessCodeStore {
	return &AccessCodeStore{DB: db}
}

// FindByPair returns the code row for (patient, hospital).
func (s *AccessCodeStore) FindByPair(ctx context.Context, patientID, hospitalID string) (*models.AccessCode, error) {
	var code models.AccessCode
	err := s.DB.WithContext(ctx).
		Where("patient_id = ? AND hospital_id = ?", patientID, hospitalID).
		First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// FindMatch returns the row matching all three of (code, patient, hospital).
// MySQL's default collation compares case-insensitively; the service layer
// re-checks the code byte-for-byte.
func (s *AccessCodeStore) FindMatch(ctx context.Context, code, patientID, hospitalID string) (*models.AccessCode, error) {
	var row models.AccessCode
	err := s.DB.WithContext(ctx).
		Where("code = ? AND patient_id = ? AND hospital_id = ?", code, patientID, hospitalID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByHospital returns all codes a hospital has issued, with patients preloaded.
func (s *AccessCodeStore) ListByHospital(ctx context.Context, hospitalID string) ([]models.AccessCode, error) {
	var codes []models.AccessCode
	err := s.DB.WithContext(ctx).
		Preload("Patient").
		Where("hospital_id = ?", hospitalID).
		Order("created_at asc").
		Find(&codes).Error
	return codes, err
}

// Create inserts a new code row. The composite unique index on
// (patient_id, hospital_id) makes a lost race surface as ErrDuplicatePair.
func (s *AccessCodeStore) Create(ctx context.Context, code *models.AccessCode) error {
	err := s.DB.WithContext(ctx).Create(code).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return services.ErrDuplicatePair
	}
	return err
}
