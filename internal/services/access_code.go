package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/HamzaSid020/MediVault/internal/models"
)

// AccessCodeRepository is the store behind the access-code service. Create
// must reject a second row for the same (patient, hospital) pair with
// ErrDuplicatePair so a lost issuance race can be recovered by re-reading.
type AccessCodeRepository interface {
	FindByPair(ctx context.Context, patientID, hospitalID string) (*models.AccessCode, error)
	FindMatch(ctx context.Context, code, patientID, hospitalID string) (*models.AccessCode, error)
	ListByHospital(ctx context.Context, hospitalID string) ([]models.AccessCode, error)
	Create(ctx context.Context, code *models.AccessCode) error
}

// ErrDuplicatePair is returned by AccessCodeRepository.Create when a code
// for the pair already exists.
var ErrDuplicatePair = fmt.Errorf("access code already exists for pair")

const codeTagAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AccessCodeService issues and verifies the per-(patient, hospital) codes
// that gate document downloads.
type AccessCodeService struct {
	repo    AccessCodeRepository
	now     func() time.Time
	randTag func(n int) string
}

// NewAccessCodeService creates an AccessCodeService backed by the given repository.
func NewAccessCodeService(repo AccessCodeRepository) *AccessCodeService {
	return &AccessCodeService{
		repo: repo,
		now:  time.Now,
		randTag: func(n int) string {
			b := make([]byte, n)
			for i := range b {
				b[i] = codeTagAlphabet[rand.Intn(len(codeTagAlphabet))]
			}
			return string(b)
		},
	}
}

// IssueForPair returns the code for (patient, hospital), creating it if the
// pair has never been issued one. Repeat calls return the stored code
// unchanged and never write. A concurrent first issuance that loses the
// unique-index race re-reads and returns the winner's code.
func (s *AccessCodeService) IssueForPair(ctx context.Context, patient *models.Patient, hospitalID string) (*models.AccessCode, error) {
	if patient == nil || patient.ID == "" || hospitalID == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.FindByPair(ctx, patient.ID, hospitalID)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	code := &models.AccessCode{
		Code:       s.synthesize(patient),
		PatientID:  patient.ID,
		HospitalID: hospitalID,
	}
	if err := s.repo.Create(ctx, code); err != nil {
		if err == ErrDuplicatePair {
			return s.repo.FindByPair(ctx, patient.ID, hospitalID)
		}
		return nil, err
	}
	return code, nil
}

// IssueForPatient issues a code for every hospital the patient is currently
// affiliated with. Called at registration and whenever a new hospital link is
// added, so every affiliated hospital ends up with exactly one code.
func (s *AccessCodeService) IssueForPatient(ctx context.Context, patient *models.Patient) error {
	if patient == nil {
		return ErrInvalidInput
	}
	for i := range patient.Hospitals {
		if _, err := s.IssueForPair(ctx, patient, patient.Hospitals[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// GetForPair returns the stored code for (patient, hospital) without ever
// creating one. Issuance happens only when a patient-hospital link is made;
// a pair that was never linked reports ErrNotFound.
func (s *AccessCodeService) GetForPair(ctx context.Context, patientID, hospitalID string) (*models.AccessCode, error) {
	if patientID == "" || hospitalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.FindByPair(ctx, patientID, hospitalID)
}

// Verify reports whether an access code row matches (code, patient, hospital)
// exactly, case-sensitively. A mismatch is a routine negative result, not an
// error: callers must treat false as the only rejection signal.
func (s *AccessCodeService) Verify(ctx context.Context, patientID, hospitalID, submittedCode string) (bool, error) {
	if patientID == "" || hospitalID == "" || submittedCode == "" {
		return false, nil
	}
	match, err := s.repo.FindMatch(ctx, submittedCode, patientID, hospitalID)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// FindMatch may be backed by a case-insensitive collation; re-check.
	return match.Code == submittedCode, nil
}

// ListForHospital returns every code the hospital has issued.
func (s *AccessCodeService) ListForHospital(ctx context.Context, hospitalID string) ([]models.AccessCode, error) {
	if hospitalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByHospital(ctx, hospitalID)
}

// synthesize builds a new code from patient attributes: the uppercased first
// three letters of the name, the zero-padded age, and four random
// alphanumeric characters.
func (s *AccessCodeService) synthesize(patient *models.Patient) string {
	prefix := []rune(patient.Name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s%02d%s", strings.ToUpper(string(prefix)), patient.Age(s.now()), s.randTag(4))
}
