package services

import (
	"context"
	"testing"

	"github.com/HamzaSid020/MediVault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSelectionStore is an in-memory SelectionStore.
type fakeSelectionStore struct {
	entries map[string]Selection
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{entries: make(map[string]Selection)}
}

func (s *fakeSelectionStore) key(userID string, kind models.DocumentKind) string {
	return userID + "/" + string(kind)
}

func (s *fakeSelectionStore) Put(_ context.Context, userID string, kind models.DocumentKind, sel Selection) error {
	s.entries[s.key(userID, kind)] = sel
	return nil
}

func (s *fakeSelectionStore) Get(_ context.Context, userID string, kind models.DocumentKind) (Selection, error) {
	sel, ok := s.entries[s.key(userID, kind)]
	if !ok {
		return Selection{}, ErrNotFound
	}
	return sel, nil
}

func (s *fakeSelectionStore) Delete(_ context.Context, userID string, kind models.DocumentKind) error {
	delete(s.entries, s.key(userID, kind))
	return nil
}

func newSelectionFixture(t *testing.T) (*SelectionService, *fakeSelectionStore, *models.Patient) {
	t.Helper()
	store := newFakeSelectionStore()
	codeRepo := &fakeCodeRepo{}
	codes := newTestCodeService(codeRepo)
	patient := testPatient()
	_, err := codes.IssueForPair(context.Background(), patient, "hosp-1")
	require.NoError(t, err)
	return NewSelectionService(store, codes), store, patient
}

func TestSelectionConfirm(t *testing.T) {
	t.Run("correct code consumes the selection exactly once", func(t *testing.T) {
		svc, _, patient := newSelectionFixture(t)
		ctx := context.Background()

		require.NoError(t, svc.Select(ctx, "user-1", models.KindReport, "hosp-1", "doc-1"))

		docID, ok, err := svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "doc-1", docID)

		// The machine is back to idle: a replay does not unlock anything.
		_, _, err = svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		assert.ErrorIs(t, err, ErrNoSelection)
	})

	t.Run("wrong code leaves the selection pending", func(t *testing.T) {
		svc, _, patient := newSelectionFixture(t)
		ctx := context.Background()

		require.NoError(t, svc.Select(ctx, "user-1", models.KindReport, "hosp-1", "doc-1"))

		docID, ok, err := svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "WRONG")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, docID)

		// Retry with the right code still succeeds.
		docID, ok, err = svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "doc-1", docID)
	})

	t.Run("idle machine reports no selection", func(t *testing.T) {
		svc, _, patient := newSelectionFixture(t)
		_, _, err := svc.Confirm(context.Background(), "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		assert.ErrorIs(t, err, ErrNoSelection)
	})

	t.Run("later selection replaces the earlier one", func(t *testing.T) {
		svc, _, patient := newSelectionFixture(t)
		ctx := context.Background()

		require.NoError(t, svc.Select(ctx, "user-1", models.KindReport, "hosp-1", "doc-1"))
		require.NoError(t, svc.Select(ctx, "user-1", models.KindReport, "hosp-1", "doc-2"))

		docID, ok, err := svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "doc-2", docID)
	})

	t.Run("kinds do not interfere", func(t *testing.T) {
		svc, _, patient := newSelectionFixture(t)
		ctx := context.Background()

		require.NoError(t, svc.Select(ctx, "user-1", models.KindReport, "hosp-1", "doc-1"))
		require.NoError(t, svc.Select(ctx, "user-1", models.KindBill, "hosp-1", "doc-9"))

		docID, ok, err := svc.Confirm(ctx, "user-1", models.KindBill, patient.ID, "HAM25ZZZZ")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "doc-9", docID)

		// The report selection is untouched.
		docID, ok, err = svc.Confirm(ctx, "user-1", models.KindReport, patient.ID, "HAM25ZZZZ")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "doc-1", docID)
	})
}

func TestSelectionClear(t *testing.T) {
	svc, store, patient := newSelectionFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Select(ctx, "user-1", models.KindPrescription, "hosp-1", "doc-1"))
	require.NoError(t, svc.Clear(ctx, "user-1", models.KindPrescription))
	assert.Empty(t, store.entries)

	_, _, err := svc.Confirm(ctx, "user-1", models.KindPrescription, patient.ID, "HAM25ZZZZ")
	assert.ErrorIs(t, err, ErrNoSelection)

	// Clearing an idle machine is a no-op.
	assert.NoError(t, svc.Clear(ctx, "user-1", models.KindPrescription))
}

func TestSelectionValidation(t *testing.T) {
	svc, _, _ := newSelectionFixture(t)
	err := svc.Select(context.Background(), "", models.KindReport, "hosp-1", "doc-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = svc.Select(context.Background(), "user-1", models.KindReport, "", "doc-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
