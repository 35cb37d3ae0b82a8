package store

import (
	"context"
	"errors"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"gorm.io/gorm"
)

// DocumentStore is the gorm-backed services.DocumentRepository.
type DocumentStore struct {
	DB *gorm.DB
}

// NewDocumentStore creates a DocumentStore.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{DB: db}
}

// Create inserts the document row and its back-reference links in one
// transaction.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document, refIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		for _, refID := range refIDs {
			var ref models.Document
			if err := tx.First(&ref, "id = ?", refID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return services.ErrNotFound
				}
				return err
			}
			if err := tx.Model(doc).Association("Refs").Append(&ref); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID fetches one document of the given kind with its refs preloaded.
func (s *DocumentStore) GetByID(ctx context.Context, kind models.DocumentKind, id string) (*models.Document, error) {
	var doc models.Document
	err := s.DB.WithContext(ctx).
		Preload("Refs").
		Where("id = ? AND kind = ?", id, kind).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByPatient returns a patient's documents of one kind, newest first,
// with the issuing hospital preloaded.
func (s *DocumentStore) ListByPatient(ctx context.Context, kind models.DocumentKind, patientID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.DB.WithContext(ctx).
		Preload("Hospital").
		Where("kind = ? AND patient_id = ?", kind, patientID).
		Order("created_at desc").
		Find(&docs).Error
	return docs, err
}

// ListByHospital returns a hospital's issued documents of one kind, newest
// first, with the owning patient preloaded.
func (s *DocumentStore) ListByHospital(ctx context.Context, kind models.DocumentKind, hospitalID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.DB.WithContext(ctx).
		Preload("Patient").
		Where("kind = ? AND hospital_id = ?", kind, hospitalID).
		Order("created_at desc").
		Find(&docs).Error
	return docs, err
}

// CountByPatient counts a patient's documents of one kind.
func (s *DocumentStore) CountByPatient(ctx context.Context, kind models.DocumentKind, patientID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Document{}).
		Where("kind = ? AND patient_id = ?", kind, patientID).
		Count(&n).Error
	return n, err
}

// ScrubRefs removes every link into or out of the document from the
// document_refs join table.
func (s *DocumentStore) ScrubRefs(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).
		Exec("DELETE FROM document_refs WHERE document_id = ? OR ref_id = ?", id, id).Error
}

// Delete removes the document row itself.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error
}
