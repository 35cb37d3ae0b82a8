package handlers

import (
	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler handles the per-entity notification log.
type NotificationHandler struct {
	Notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

// owner resolves which notification log the caller owns from the token
// claims: patients read their patient log, hospital staff their hospital log.
func owner(c *gin.Context) (models.OwnerType, string, bool) {
	if patientID, ok := middleware.GetPatientIDFromContext(c); ok {
		return models.OwnerPatient, patientID, true
	}
	if hospitalID, ok := middleware.GetHospitalIDFromContext(c); ok {
		return models.OwnerHospital, hospitalID, true
	}
	utils.Unauthorized(c, "No patient or hospital identity found in token")
	return "", "", false
}

// List handles fetching the caller's notifications, oldest first.
func (h *NotificationHandler) List(c *gin.Context) {
	ownerType, ownerID, ok := owner(c)
	if !ok {
		return
	}

	entries, err := h.Notifications.List(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}
	utils.Success(c, "Notifications fetched successfully", entries)
}

// UnreadCount handles fetching the caller's unread notification count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	ownerType, ownerID, ok := owner(c)
	if !ok {
		return
	}

	count, err := h.Notifications.UnreadCount(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		utils.InternalServerError(c, "Failed to count notifications: "+err.Error())
		return
	}
	utils.Success(c, "Unread count fetched successfully", gin.H{"unread": count})
}

// MarkRead handles marking one of the caller's notifications as read.
// Marking an already-read entry is a no-op success.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ownerType, ownerID, ok := owner(c)
	if !ok {
		return
	}

	entry, err := h.Notifications.MarkRead(c.Request.Context(), ownerType, ownerID, c.Param("id"))
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Failed to update notification: "+err.Error())
		}
		return
	}
	utils.Success(c, "Notification marked as read", entry)
}
