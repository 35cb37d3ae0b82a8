package models

// OwnerType discriminates whose notification log an entry belongs to
type OwnerType string

const (
	OwnerPatient  OwnerType = "patient"
	OwnerHospital OwnerType = "hospital"
)

// Notification is one entry in an entity's append-only notification log.
// Entries are only ever created and have their Read flag flipped; the unread
// count is derived, never stored.
type Notification struct {
	BaseModel
	OwnerType OwnerType `gorm:"size:16;index:idx_notification_owner;not null" json:"ownerType"`
	OwnerID   string    `gorm:"size:36;index:idx_notification_owner;not null" json:"ownerId"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
}
