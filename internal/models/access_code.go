package models

// AccessCode is the shared secret that lets a patient unlock document
// downloads from one hospital. The composite unique index enforces at most
// one code per (patient, hospital) pair at the store level, so two racing
// issuance calls cannot both insert.
type AccessCode struct {
	BaseModel
	Code       string `gorm:"size:16;not null" json:"code"`
	PatientID  string `gorm:"size:36;not null;uniqueIndex:idx_access_code_pair" json:"patientId"`
	HospitalID string `gorm:"size:36;not null;uniqueIndex:idx_access_code_pair" json:"hospitalId"`

	// Relations
	Patient  Patient  `gorm:"foreignKey:PatientID" json:"-"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}
