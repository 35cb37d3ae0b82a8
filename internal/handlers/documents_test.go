package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memCodeRepo is an in-memory services.AccessCodeRepository for handler tests.
type memCodeRepo struct {
	codes []models.AccessCode
}

func (r *memCodeRepo) FindByPair(_ context.Context, patientID, hospitalID string) (*models.AccessCode, error) {
	for i := range r.codes {
		if r.codes[i].PatientID == patientID && r.codes[i].HospitalID == hospitalID {
			c := r.codes[i]
			return &c, nil
		}
	}
	return nil, services.ErrNotFound
}

func (r *memCodeRepo) FindMatch(_ context.Context, code, patientID, hospitalID string) (*models.AccessCode, error) {
	for i := range r.codes {
		if r.codes[i].Code == code && r.codes[i].PatientID == patientID && r.codes[i].HospitalID == hospitalID {
			c := r.codes[i]
			return &c, nil
		}
	}
	return nil, services.ErrNotFound
}

func (r *memCodeRepo) ListByHospital(_ context.Context, hospitalID string) ([]models.AccessCode, error) {
	var out []models.AccessCode
	for i := range r.codes {
		if r.codes[i].HospitalID == hospitalID {
			out = append(out, r.codes[i])
		}
	}
	return out, nil
}

func (r *memCodeRepo) Create(_ context.Context, code *models.AccessCode) error {
	r.codes = append(r.codes, *code)
	return nil
}

// memSelectionStore is an in-memory services.SelectionStore.
type memSelectionStore struct {
	entries map[string]services.Selection
}

func newMemSelectionStore() *memSelectionStore {
	return &memSelectionStore{entries: make(map[string]services.Selection)}
}

func (s *memSelectionStore) key(userID string, kind models.DocumentKind) string {
	return userID + "/" + string(kind)
}

func (s *memSelectionStore) Put(_ context.Context, userID string, kind models.DocumentKind, sel services.Selection) error {
	s.entries[s.key(userID, kind)] = sel
	return nil
}

func (s *memSelectionStore) Get(_ context.Context, userID string, kind models.DocumentKind) (services.Selection, error) {
	sel, ok := s.entries[s.key(userID, kind)]
	if !ok {
		return services.Selection{}, services.ErrNotFound
	}
	return sel, nil
}

func (s *memSelectionStore) Delete(_ context.Context, userID string, kind models.DocumentKind) error {
	delete(s.entries, s.key(userID, kind))
	return nil
}

// memNotificationRepo is an in-memory services.NotificationRepository.
type memNotificationRepo struct {
	entries []*models.Notification
}

func (r *memNotificationRepo) Append(_ context.Context, n *models.Notification) error {
	r.entries = append(r.entries, n)
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*models.Notification, error) {
	for _, n := range r.entries {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, services.ErrNotFound
}

func (r *memNotificationRepo) Update(_ context.Context, n *models.Notification) error {
	return nil
}

func (r *memNotificationRepo) ListByOwner(_ context.Context, owner models.OwnerType, ownerID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.entries {
		if n.OwnerType == owner && n.OwnerID == ownerID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, owner models.OwnerType, ownerID string) (int64, error) {
	var count int64
	for _, n := range r.entries {
		if n.OwnerType == owner && n.OwnerID == ownerID && !n.Read {
			count++
		}
	}
	return count, nil
}

func postJSON(t *testing.T, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func newConfirmFixture() (*DocumentHandler, *memSelectionStore) {
	codeRepo := &memCodeRepo{codes: []models.AccessCode{
		{Code: "GEN25AAAA", PatientID: "pat-1", HospitalID: "hosp-1"},
	}}
	selStore := newMemSelectionStore()
	selections := services.NewSelectionService(selStore, services.NewAccessCodeService(codeRepo))
	notifications := services.NewNotificationService(&memNotificationRepo{}, zerolog.Nop())
	return NewDocumentHandler(nil, nil, selections, notifications), selStore
}

func asReportPatient(c *gin.Context) {
	c.Params = gin.Params{{Key: "kind", Value: "report"}}
	c.Set("userID", "user-1")
	c.Set("userRole", models.RolePatient)
	c.Set("patientID", "pat-1")
	c.Set("hospitalID", "")
}

func TestDocumentConfirm(t *testing.T) {
	seed := func(t *testing.T, store *memSelectionStore) {
		t.Helper()
		require.NoError(t, store.Put(context.Background(), "user-1", models.KindReport,
			services.Selection{HospitalID: "hosp-1", DocumentID: "doc-1"}))
	}

	t.Run("code mismatch is a routine negative, not forbidden", func(t *testing.T) {
		h, store := newConfirmFixture()
		seed(t, store)

		w, c := postJSON(t, gin.H{"code": "WRONG"})
		asReportPatient(c)
		h.Confirm(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data struct {
				Verified bool `json:"verified"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Verified)

		// The selection survives the failed attempt.
		_, err := store.Get(context.Background(), "user-1", models.KindReport)
		assert.NoError(t, err)
	})

	t.Run("correct code unlocks the selected document", func(t *testing.T) {
		h, store := newConfirmFixture()
		seed(t, store)

		w, c := postJSON(t, gin.H{"code": "GEN25AAAA"})
		asReportPatient(c)
		h.Confirm(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data struct {
				Verified   bool   `json:"verified"`
				DocumentID string `json:"documentId"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Verified)
		assert.Equal(t, "doc-1", resp.Data.DocumentID)

		// Consumed: the pending selection is gone.
		_, err := store.Get(context.Background(), "user-1", models.KindReport)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("nothing selected is a bad request", func(t *testing.T) {
		h, _ := newConfirmFixture()

		w, c := postJSON(t, gin.H{"code": "GEN25AAAA"})
		asReportPatient(c)
		h.Confirm(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
