package services

import (
	"context"
	"fmt"
	"io"

	"github.com/HamzaSid020/MediVault/internal/blob"
	"github.com/HamzaSid020/MediVault/internal/models"

	"github.com/rs/zerolog"
)

// DocumentRepository persists document rows and their back-reference links.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document, refIDs []string) error
	GetByID(ctx context.Context, kind models.DocumentKind, id string) (*models.Document, error)
	ListByPatient(ctx context.Context, kind models.DocumentKind, patientID string) ([]models.Document, error)
	ListByHospital(ctx context.Context, kind models.DocumentKind, hospitalID string) ([]models.Document, error)
	CountByPatient(ctx context.Context, kind models.DocumentKind, patientID string) (int64, error)
	// ScrubRefs removes every back-reference link pointing at or out of the
	// document, across all sibling documents.
	ScrubRefs(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// DocumentService manages upload, listing, download and deletion of reports,
// bills and prescriptions.
type DocumentService struct {
	repo  DocumentRepository
	blobs blob.Store
	log   zerolog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(repo DocumentRepository, blobs blob.Store, log zerolog.Logger) *DocumentService {
	return &DocumentService{repo: repo, blobs: blobs, log: log}
}

// Create stores the file blob first and the database row second, so a crash
// in between leaves an orphaned blob rather than a row pointing at a missing
// file. refIDs are links to related documents (e.g. the reports a bill is
// based on).
func (s *DocumentService) Create(ctx context.Context, doc *models.Document, file io.Reader, refIDs []string) error {
	if doc == nil || doc.Name == "" || doc.PatientID == "" || doc.HospitalID == "" {
		return ErrInvalidInput
	}
	if file != nil {
		if doc.FileName == "" {
			return ErrInvalidInput
		}
		if err := s.blobs.Save(doc.FileName, file); err != nil {
			return fmt.Errorf("storing document file: %w", err)
		}
	}
	return s.repo.Create(ctx, doc, refIDs)
}

// Get fetches one document of the given kind.
func (s *DocumentService) Get(ctx context.Context, kind models.DocumentKind, id string) (*models.Document, error) {
	return s.repo.GetByID(ctx, kind, id)
}

// ListForPatient lists the patient's documents of one kind.
func (s *DocumentService) ListForPatient(ctx context.Context, kind models.DocumentKind, patientID string) ([]models.Document, error) {
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, kind, patientID)
}

// ListForHospital lists the documents of one kind a hospital has issued.
func (s *DocumentService) ListForHospital(ctx context.Context, kind models.DocumentKind, hospitalID string) ([]models.Document, error) {
	if hospitalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByHospital(ctx, kind, hospitalID)
}

// CountForPatient counts a patient's documents of one kind.
func (s *DocumentService) CountForPatient(ctx context.Context, kind models.DocumentKind, patientID string) (int64, error) {
	return s.repo.CountByPatient(ctx, kind, patientID)
}

// Open returns the document's file contents and name for streaming.
func (s *DocumentService) Open(ctx context.Context, kind models.DocumentKind, id string) (io.ReadCloser, string, error) {
	doc, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	if doc.FileName == "" {
		return nil, "", ErrNotFound
	}
	r, err := s.blobs.Open(doc.FileName)
	if err == blob.ErrNotFound {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return r, doc.FileName, nil
}

// Delete removes a hospital's own document. The steps are ordered to fail
// safe: first strip the document's ID from every sibling's back-reference
// list, then delete the row, and only then remove the blob, so a crash
// mid-sequence leaves an orphaned-but-harmless file instead of a dangling
// database reference. A blob failure after the row is gone is reported, not
// masked as success. Deleting an already-deleted document is ErrNotFound.
func (s *DocumentService) Delete(ctx context.Context, kind models.DocumentKind, id, hospitalID string) error {
	doc, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if doc.HospitalID != hospitalID {
		return ErrForbidden
	}

	if err := s.repo.ScrubRefs(ctx, id); err != nil {
		return fmt.Errorf("scrubbing document references: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if doc.FileName != "" {
		if err := s.blobs.Delete(doc.FileName); err != nil {
			s.log.Error().Err(err).Str("file", doc.FileName).Msg("document blob delete failed after row removal")
			return fmt.Errorf("removing document file: %w", err)
		}
	}
	return nil
}
