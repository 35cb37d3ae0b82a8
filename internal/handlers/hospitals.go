package handlers

import (
	"fmt"

	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HospitalHandler handles hospital provisioning, profiles and the public
// contact form.
type HospitalHandler struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
}

// NewHospitalHandler creates a new HospitalHandler.
func NewHospitalHandler(db *gorm.DB, notifications *services.NotificationService) *HospitalHandler {
	return &HospitalHandler{DB: db, Notifications: notifications}
}

// ListPublic handles the public hospital directory used by the login and
// contact pages.
func (h *HospitalHandler) ListPublic(c *gin.Context) {
	var hospitals []models.Hospital
	if err := h.DB.Order("name asc").Find(&hospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospitals: "+err.Error())
		return
	}
	utils.Success(c, "Hospitals fetched successfully", hospitals)
}

// CreateHospitalRequest represents the request body for provisioning a
// hospital together with its staff login.
type CreateHospitalRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Description string `json:"description"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// Create handles an admin provisioning a new hospital and its login.
func (h *HospitalHandler) Create(c *gin.Context) {
	var req CreateHospitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hospital := models.Hospital{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
	}
	login := models.User{
		Username: req.Username,
		Role:     models.RoleHospital,
	}
	if err := login.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hospital).Error; err != nil {
			return err
		}
		login.HospitalID = &hospital.ID
		return tx.Create(&login).Error
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A login with this username already exists")
		} else {
			utils.InternalServerError(c, "Failed to create hospital: "+err.Error())
		}
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerHospital, hospital.ID,
		fmt.Sprintf("Welcome to MediVault, %s.", hospital.Name))

	utils.Created(c, "Hospital created successfully", hospital)
}

// GetMe handles fetching the calling hospital's own record.
func (h *HospitalHandler) GetMe(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Hospital fetched successfully", hospital)
}

// UpdateMeHospitalRequest represents the request body for a hospital profile
// update.
type UpdateMeHospitalRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Description string `json:"description"`
}

// UpdateMe handles a hospital editing its own profile.
func (h *HospitalHandler) UpdateMe(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	var req UpdateMeHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		hospital.Name = req.Name
	}
	if req.Email != "" {
		hospital.Email = req.Email
	}
	if req.PhoneNumber != "" {
		hospital.PhoneNumber = req.PhoneNumber
	}
	if req.Description != "" {
		hospital.Description = req.Description
	}

	if err := h.DB.Save(&hospital).Error; err != nil {
		utils.InternalServerError(c, "Failed to update hospital: "+err.Error())
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerHospital, hospital.ID, "Your hospital profile was updated.")

	utils.Success(c, "Hospital updated successfully", hospital)
}

// ContactRequest represents the public contact form payload.
type ContactRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Message      string `json:"message" binding:"required"`
}

// Contact handles the public contact form. Messages are stored for the
// operators to review; no account is required.
func (h *HospitalHandler) Contact(c *gin.Context) {
	var req ContactRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	msg := models.ContactMessage{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Message:      req.Message,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		utils.InternalServerError(c, "Failed to store message: "+err.Error())
		return
	}

	utils.Created(c, "Message received", nil)
}
