package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHospital Role = "hospital"
	RolePatient  Role = "patient"
)

// User represents a login account. Patient accounts carry a PatientID,
// hospital accounts a HospitalID; admin accounts carry neither.
type User struct {
	BaseModel
	Username   string  `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password   string  `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role       Role    `gorm:"size:20;default:'patient'" json:"role"`
	PatientID  *string `gorm:"size:36;index" json:"patientId,omitempty"`
	HospitalID *string `gorm:"size:36;index" json:"hospitalId,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Patient       *Patient       `gorm:"foreignKey:PatientID" json:"-"`
	Hospital      *Hospital      `gorm:"foreignKey:HospitalID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       Role    `json:"role"`
	PatientID  *string `json:"patientId,omitempty"`
	HospitalID *string `json:"hospitalId,omitempty"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		PatientID:  u.PatientID,
		HospitalID: u.HospitalID,
	}
}
