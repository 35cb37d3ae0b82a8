package models

import (
	"time"
)

// Patient represents a patient identity record. Patients are created by
// hospital staff at registration time and are never physically deleted.
type Patient struct {
	BaseModel
	MedivaultID      string     `gorm:"uniqueIndex;size:16;not null" json:"medivaultId"`
	Name             string     `gorm:"size:200;not null" json:"name"`
	PhoneNumber      string     `gorm:"size:20" json:"phoneNumber"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Sex              string     `gorm:"size:1" json:"sex"` // M, F or X
	Address          string     `gorm:"size:255" json:"address"`
	Email            string     `gorm:"size:255" json:"email"`
	Picture          string     `gorm:"size:255" json:"picture,omitempty"`
	HealthNumberHash string     `gorm:"size:255" json:"-"` // bcrypt of the national health number

	// Relations
	Hospitals []Hospital `gorm:"many2many:patient_hospitals" json:"hospitals,omitempty"`
}

// Age derives the patient's age in whole years at the given reference time.
func (p *Patient) Age(at time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	dob := *p.DateOfBirth
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Hospital represents a care provider that registers patients and issues
// documents. Created by administrative provisioning.
type Hospital struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Email       string `gorm:"size:255" json:"email"`
	PhoneNumber string `gorm:"size:20" json:"phoneNumber"`
	Description string `gorm:"type:text" json:"description"`
	Picture     string `gorm:"size:255" json:"picture,omitempty"`

	// Relations
	Patients []Patient `gorm:"many2many:patient_hospitals" json:"-"`
}
