package models

// DocumentKind represents the kind of a stored document
type DocumentKind string

const (
	KindReport       DocumentKind = "report"
	KindBill         DocumentKind = "bill"
	KindPrescription DocumentKind = "prescription"
)

// ParseDocumentKind validates a kind string from the request path.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	switch DocumentKind(s) {
	case KindReport, KindBill, KindPrescription:
		return DocumentKind(s), true
	}
	return "", false
}

// Document represents a report, bill or prescription issued by a hospital
// for a patient. One model covers all three kinds; Refs holds back-references
// to related documents (a bill referencing the reports that justified it, a
// prescription referencing reports and bills).
type Document struct {
	BaseModel
	Kind       DocumentKind `gorm:"size:20;index;not null" json:"kind"`
	Category   string       `gorm:"size:100" json:"category"`
	Name       string       `gorm:"size:200;not null" json:"name"`
	FileName   string       `gorm:"size:255" json:"fileName"` // blob store reference
	PatientID  string       `gorm:"size:36;index;not null" json:"patientId"`
	HospitalID string       `gorm:"size:36;index;not null" json:"hospitalId"`

	// Relations
	Patient  Patient     `gorm:"foreignKey:PatientID" json:"-"`
	Hospital Hospital    `gorm:"foreignKey:HospitalID" json:"-"`
	Refs     []*Document `gorm:"many2many:document_refs;joinForeignKey:DocumentID;joinReferences:RefID" json:"refs,omitempty"`
}
