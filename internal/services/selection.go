package services

import (
	"context"

	"github.com/HamzaSid020/MediVault/internal/models"
)

// Selection is a pending download pointer: the hospital whose code must be
// presented and the document it unlocks. It lives in session-scoped storage,
// never in the database.
type Selection struct {
	HospitalID string `json:"hospitalId"`
	DocumentID string `json:"documentId"`
}

// SelectionStore holds at most one pending selection per (user, document
// kind). Get returns ErrNotFound when nothing is pending.
type SelectionStore interface {
	Put(ctx context.Context, userID string, kind models.DocumentKind, sel Selection) error
	Get(ctx context.Context, userID string, kind models.DocumentKind) (Selection, error)
	Delete(ctx context.Context, userID string, kind models.DocumentKind) error
}

// SelectionService runs the download-selection state machine:
// Idle -> Selected -> (consumed) -> Idle. One machine per (patient, kind);
// a single generic implementation covers reports, bills and prescriptions.
type SelectionService struct {
	store SelectionStore
	codes *AccessCodeService
}

// NewSelectionService creates a SelectionService.
func NewSelectionService(store SelectionStore, codes *AccessCodeService) *SelectionService {
	return &SelectionService{store: store, codes: codes}
}

// Select records a pending (hospital, document) pointer for the user,
// overwriting any prior unconsumed selection of the same kind. Last write
// wins; there is no queue of pending selections.
func (s *SelectionService) Select(ctx context.Context, userID string, kind models.DocumentKind, hospitalID, documentID string) error {
	if userID == "" || hospitalID == "" || documentID == "" {
		return ErrInvalidInput
	}
	return s.store.Put(ctx, userID, kind, Selection{HospitalID: hospitalID, DocumentID: documentID})
}

// Confirm verifies the submitted code against the pending selection's
// hospital. On success the selection is consumed exactly once and the
// unlocked document ID is returned. On a code mismatch the selection stays
// pending so the caller may retry, and ok is false with a nil error: a failed
// verification is routine input, not an error condition. With nothing
// pending, Confirm returns ErrNoSelection rather than replaying a prior
// result.
func (s *SelectionService) Confirm(ctx context.Context, userID string, kind models.DocumentKind, patientID, submittedCode string) (documentID string, ok bool, err error) {
	sel, err := s.store.Get(ctx, userID, kind)
	if err == ErrNotFound {
		return "", false, ErrNoSelection
	}
	if err != nil {
		return "", false, err
	}

	verified, err := s.codes.Verify(ctx, patientID, sel.HospitalID, submittedCode)
	if err != nil {
		return "", false, err
	}
	if !verified {
		return "", false, nil
	}

	if err := s.store.Delete(ctx, userID, kind); err != nil {
		return "", false, err
	}
	return sel.DocumentID, true, nil
}

// Clear discards any pending selection without verification.
func (s *SelectionService) Clear(ctx context.Context, userID string, kind models.DocumentKind) error {
	return s.store.Delete(ctx, userID, kind)
}
