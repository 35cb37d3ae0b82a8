package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/HamzaSid020/MediVault/internal/mailer"
	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccessCodeHandler handles hospital access codes: listing them on the
// hospital side and emailing them to patients on request.
type AccessCodeHandler struct {
	DB     *gorm.DB
	Codes  *services.AccessCodeService
	Mailer mailer.Sender
}

// NewAccessCodeHandler creates a new AccessCodeHandler.
func NewAccessCodeHandler(db *gorm.DB, codes *services.AccessCodeService, sender mailer.Sender) *AccessCodeHandler {
	return &AccessCodeHandler{DB: db, Codes: codes, Mailer: sender}
}

// ListForHospital handles a hospital fetching the codes it has issued,
// oldest first.
func (h *AccessCodeHandler) ListForHospital(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	codes, err := h.Codes.ListForHospital(c.Request.Context(), hospitalID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch access codes: "+err.Error())
		return
	}
	utils.Success(c, "Access codes fetched successfully", codes)
}

// EmailCodeRequest represents the request body for emailing an access code.
type EmailCodeRequest struct {
	HospitalID string `json:"hospitalId" binding:"required"`
}

// EmailCode handles a patient requesting their code for one hospital by
// email. The lookup is strictly read-only: codes exist only for hospitals
// the patient has been linked to, and this endpoint never mints one. The
// send happens in the background; the request is acknowledged as soon as
// the code is resolved.
func (h *AccessCodeHandler) EmailCode(c *gin.Context) {
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}

	var req EmailCodeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}
	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", req.HospitalID).Error; err != nil {
		utils.NotFound(c, "Hospital not found")
		return
	}

	code, err := h.Codes.GetForPair(c.Request.Context(), patient.ID, hospital.ID)
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "No access code exists for this hospital")
		} else {
			utils.InternalServerError(c, "Failed to resolve access code: "+err.Error())
		}
		return
	}

	subject := fmt.Sprintf("Your MediVault access code for %s", hospital.Name)
	body := fmt.Sprintf("Hello %s,\n\nYour access code for %s is %s.\n\nPresent it when confirming a document download.",
		patient.Name, hospital.Name, code.Code)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = h.Mailer.Send(ctx, patient.Email, subject, body)
	}()

	utils.Success(c, "Access code email queued", nil)
}
