package models

// ContactMessage stores a message submitted through the public contact form
type ContactMessage struct {
	BaseModel
	FirstName    string `gorm:"size:100" json:"firstName"`
	LastName     string `gorm:"size:100" json:"lastName"`
	EmailAddress string `gorm:"size:255" json:"emailAddress"`
	Message      string `gorm:"type:text" json:"message"`
}
