package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/HamzaSid020/MediVault/internal/blob"
	"github.com/HamzaSid020/MediVault/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlobStore is an in-memory blob.Store that records the order of
// operations.
type fakeBlobStore struct {
	files map[string][]byte
	ops   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{files: make(map[string][]byte)}
}

func (s *fakeBlobStore) Save(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[name] = data
	s.ops = append(s.ops, "save:"+name)
	return nil
}

func (s *fakeBlobStore) Open(name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Delete(name string) error {
	delete(s.files, name)
	s.ops = append(s.ops, "delete:"+name)
	return nil
}

// fakeDocumentRepo is an in-memory DocumentRepository with the same
// back-reference join semantics as the database adapter.
type fakeDocumentRepo struct {
	docs map[string]*models.Document
	refs map[string][]string // document ID -> referenced IDs
	ops  []string
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs: make(map[string]*models.Document),
		refs: make(map[string][]string),
	}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document, refIDs []string) error {
	if doc.ID == "" {
		doc.ID = "doc-" + doc.Name
	}
	r.docs[doc.ID] = doc
	r.refs[doc.ID] = append([]string(nil), refIDs...)
	r.ops = append(r.ops, "create:"+doc.ID)
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, kind models.DocumentKind, id string) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok || doc.Kind != kind {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (r *fakeDocumentRepo) ListByPatient(_ context.Context, kind models.DocumentKind, patientID string) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range r.docs {
		if doc.Kind == kind && doc.PatientID == patientID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) ListByHospital(_ context.Context, kind models.DocumentKind, hospitalID string) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range r.docs {
		if doc.Kind == kind && doc.HospitalID == hospitalID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) CountByPatient(_ context.Context, kind models.DocumentKind, patientID string) (int64, error) {
	var count int64
	for _, doc := range r.docs {
		if doc.Kind == kind && doc.PatientID == patientID {
			count++
		}
	}
	return count, nil
}

func (r *fakeDocumentRepo) ScrubRefs(_ context.Context, id string) error {
	delete(r.refs, id)
	for docID, refIDs := range r.refs {
		kept := refIDs[:0]
		for _, refID := range refIDs {
			if refID != id {
				kept = append(kept, refID)
			}
		}
		r.refs[docID] = kept
	}
	r.ops = append(r.ops, "scrub:"+id)
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	r.ops = append(r.ops, "delete:"+id)
	return nil
}

func newDocumentFixture() (*DocumentService, *fakeDocumentRepo, *fakeBlobStore) {
	repo := newFakeDocumentRepo()
	blobs := newFakeBlobStore()
	return NewDocumentService(repo, blobs, zerolog.Nop()), repo, blobs
}

func reportDoc(name, fileName string) *models.Document {
	return &models.Document{
		Kind:       models.KindReport,
		Name:       name,
		FileName:   fileName,
		PatientID:  "pat-1",
		HospitalID: "hosp-1",
	}
}

func TestDocumentCreate(t *testing.T) {
	t.Run("stores the blob before the row", func(t *testing.T) {
		svc, repo, blobs := newDocumentFixture()

		doc := reportDoc("xray", "xray.pdf")
		err := svc.Create(context.Background(), doc, strings.NewReader("scan bytes"), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"save:xray.pdf"}, blobs.ops)
		assert.Equal(t, []string{"create:" + doc.ID}, repo.ops)
		assert.Equal(t, []byte("scan bytes"), blobs.files["xray.pdf"])
	})

	t.Run("records back-references", func(t *testing.T) {
		svc, repo, _ := newDocumentFixture()
		ctx := context.Background()

		report := reportDoc("xray", "")
		require.NoError(t, svc.Create(ctx, report, nil, nil))

		bill := &models.Document{
			Kind: models.KindBill, Name: "invoice",
			PatientID: "pat-1", HospitalID: "hosp-1",
		}
		require.NoError(t, svc.Create(ctx, bill, nil, []string{report.ID}))
		assert.Equal(t, []string{report.ID}, repo.refs[bill.ID])
	})

	t.Run("file without a name is rejected", func(t *testing.T) {
		svc, _, _ := newDocumentFixture()
		err := svc.Create(context.Background(), reportDoc("xray", ""), strings.NewReader("data"), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing required fields are rejected", func(t *testing.T) {
		svc, _, _ := newDocumentFixture()
		err := svc.Create(context.Background(), &models.Document{Kind: models.KindReport}, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDocumentOpen(t *testing.T) {
	svc, _, _ := newDocumentFixture()
	ctx := context.Background()

	doc := reportDoc("xray", "xray.pdf")
	require.NoError(t, svc.Create(ctx, doc, strings.NewReader("scan bytes"), nil))

	t.Run("streams the stored file", func(t *testing.T) {
		r, name, err := svc.Open(ctx, models.KindReport, doc.ID)
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, "xray.pdf", name)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "scan bytes", string(data))
	})

	t.Run("row without a file is not found", func(t *testing.T) {
		bare := reportDoc("note", "")
		require.NoError(t, svc.Create(ctx, bare, nil, nil))
		_, _, err := svc.Open(ctx, models.KindReport, bare.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong kind is not found", func(t *testing.T) {
		_, _, err := svc.Open(ctx, models.KindBill, doc.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentDelete(t *testing.T) {
	t.Run("scrubs refs, removes the row, then the blob", func(t *testing.T) {
		svc, repo, blobs := newDocumentFixture()
		ctx := context.Background()

		report := reportDoc("xray", "xray.pdf")
		require.NoError(t, svc.Create(ctx, report, strings.NewReader("scan"), nil))
		bill := &models.Document{
			Kind: models.KindBill, Name: "invoice",
			PatientID: "pat-1", HospitalID: "hosp-1",
		}
		require.NoError(t, svc.Create(ctx, bill, nil, []string{report.ID}))

		require.NoError(t, svc.Delete(ctx, models.KindReport, report.ID, "hosp-1"))

		// The sibling bill no longer points at the removed report.
		assert.Empty(t, repo.refs[bill.ID])
		assert.NotContains(t, blobs.files, "xray.pdf")
		assert.Equal(t, []string{"create:" + report.ID, "create:" + bill.ID, "scrub:" + report.ID, "delete:" + report.ID}, repo.ops)
		// The blob goes last, only after the row is gone.
		assert.Equal(t, "delete:xray.pdf", blobs.ops[len(blobs.ops)-1])
	})

	t.Run("another hospital's document is forbidden", func(t *testing.T) {
		svc, repo, _ := newDocumentFixture()
		ctx := context.Background()

		doc := reportDoc("xray", "")
		require.NoError(t, svc.Create(ctx, doc, nil, nil))

		err := svc.Delete(ctx, models.KindReport, doc.ID, "hosp-2")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Contains(t, repo.docs, doc.ID)
	})

	t.Run("double delete is not found", func(t *testing.T) {
		svc, _, _ := newDocumentFixture()
		ctx := context.Background()

		doc := reportDoc("xray", "")
		require.NoError(t, svc.Create(ctx, doc, nil, nil))
		require.NoError(t, svc.Delete(ctx, models.KindReport, doc.ID, "hosp-1"))

		err := svc.Delete(ctx, models.KindReport, doc.ID, "hosp-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentCounts(t *testing.T) {
	svc, _, _ := newDocumentFixture()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, reportDoc("a", ""), nil, nil))
	require.NoError(t, svc.Create(ctx, reportDoc("b", ""), nil, nil))
	require.NoError(t, svc.Create(ctx, &models.Document{
		Kind: models.KindBill, Name: "invoice",
		PatientID: "pat-1", HospitalID: "hosp-1",
	}, nil, nil))

	reports, err := svc.CountForPatient(ctx, models.KindReport, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reports)

	bills, err := svc.CountForPatient(ctx, models.KindBill, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bills)

	prescriptions, err := svc.CountForPatient(ctx, models.KindPrescription, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), prescriptions)
}
