package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/HamzaSid020/MediVault/internal/blob"
	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PatientHandler handles patient registration and profile requests.
type PatientHandler struct {
	DB            *gorm.DB
	Codes         *services.AccessCodeService
	Documents     *services.DocumentService
	Notifications *services.NotificationService
	Blobs         blob.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, codes *services.AccessCodeService, documents *services.DocumentService, notifications *services.NotificationService, blobs blob.Store) *PatientHandler {
	return &PatientHandler{DB: db, Codes: codes, Documents: documents, Notifications: notifications, Blobs: blobs}
}

// RegisterPatientRequest represents the request body for registering a patient.
type RegisterPatientRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	MobileNumber string `json:"mobileNumber" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required"` // YYYY-MM-DD
	Gender       string `json:"gender" binding:"required,oneof=male female other"`
	StreetName   string `json:"streetName"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ZipCode      string `json:"zipCode"`
	HealthNumber string `json:"healthNumber" binding:"required"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
}

var genderMap = map[string]string{
	"male":   "M",
	"female": "F",
	"other":  "X",
}

// RegisterPatient creates a patient record for the calling hospital: assigns
// the Medivault ID, hashes the health number, creates the login, links the
// hospital and issues its access code.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
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

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
		return
	}

	healthHash, err := bcrypt.GenerateFromPassword([]byte(req.HealthNumber), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalServerError(c, "Failed to hash health number: "+err.Error())
		return
	}

	patient := models.Patient{
		MedivaultID:      services.GenerateMedivaultID(req.FirstName, req.LastName, req.MobileNumber),
		Name:             strings.TrimSpace(req.FirstName + " " + req.LastName),
		PhoneNumber:      req.MobileNumber,
		DateOfBirth:      &dob,
		Sex:              genderMap[req.Gender],
		Address:          fmt.Sprintf("%s, %s, %s %s", req.StreetName, req.City, req.Province, req.ZipCode),
		Email:            req.EmailAddress,
		HealthNumberHash: string(healthHash),
		Hospitals:        []models.Hospital{hospital},
	}

	login := models.User{
		Username: req.Username,
		Role:     models.RolePatient,
	}
	if err := login.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&patient).Error; err != nil {
			return err
		}
		login.PatientID = &patient.ID
		return tx.Create(&login).Error
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A patient with this Medivault ID or username already exists")
		} else {
			utils.InternalServerError(c, "Failed to register patient: "+err.Error())
		}
		return
	}

	if err := h.Codes.IssueForPatient(c.Request.Context(), &patient); err != nil {
		utils.InternalServerError(c, "Failed to issue access code: "+err.Error())
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerHospital, hospital.ID,
		fmt.Sprintf("New patient registered: %s (%s)", patient.Name, patient.MedivaultID))
	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, patient.ID,
		fmt.Sprintf("Welcome to MediVault. Your Medivault ID is %s.", patient.MedivaultID))

	utils.Created(c, "Patient registered successfully", patient)
}

// GetMe handles fetching the calling patient's own record.
func (h *PatientHandler) GetMe(c *gin.Context) {
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("Hospitals").First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdateMeRequest represents the request body for a patient profile update.
type UpdateMeRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	EmailAddress string `json:"emailAddress"`
	Gender       string `json:"gender"`
	StreetName   string `json:"streetName"`
	City         string `json:"city"`
	Province     string `json:"province"`
	ZipCode      string `json:"zipCode"`
}

// UpdateMe handles a patient editing their own profile. The Medivault ID is
// assigned at registration and never changes, even when the name does.
func (h *PatientHandler) UpdateMe(c *gin.Context) {
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" || req.LastName != "" {
		patient.Name = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	if req.MobileNumber != "" {
		patient.PhoneNumber = req.MobileNumber
	}
	if req.EmailAddress != "" {
		patient.Email = req.EmailAddress
	}
	if req.Gender != "" {
		sex, ok := genderMap[req.Gender]
		if !ok {
			utils.BadRequest(c, "Invalid gender")
			return
		}
		patient.Sex = sex
	}
	if req.StreetName != "" || req.City != "" || req.Province != "" || req.ZipCode != "" {
		patient.Address = fmt.Sprintf("%s, %s, %s %s", req.StreetName, req.City, req.Province, req.ZipCode)
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, patient.ID, "Your profile was updated.")

	utils.Success(c, "Patient updated successfully", patient)
}

// UploadPicture handles a patient uploading a profile image.
func (h *PatientHandler) UploadPicture(c *gin.Context) {
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		utils.BadRequest(c, "Invalid image mime type")
		return
	}

	name := patient.MedivaultID + "_" + header.Filename
	if err := h.Blobs.Save(name, file); err != nil {
		utils.InternalServerError(c, "Failed to store image: "+err.Error())
		return
	}

	patient.Picture = name
	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, patient.ID, "Your profile picture was updated.")

	utils.Success(c, "Image uploaded successfully", gin.H{"picture": name})
}

// PatientSummary is one row of the hospital dashboard: a patient plus their
// per-kind document counts.
type PatientSummary struct {
	Patient          models.Patient `json:"patient"`
	NumReports       int64          `json:"numReports"`
	NumBills         int64          `json:"numBills"`
	NumPrescriptions int64          `json:"numPrescriptions"`
}

// ListForHospital handles fetching all patients affiliated with the calling
// hospital, aggregated with their document counts.
func (h *PatientHandler) ListForHospital(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	var hospital models.Hospital
	if err := h.DB.Preload("Patients").First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Hospital not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	ctx := c.Request.Context()
	summaries := make([]PatientSummary, 0, len(hospital.Patients))
	for _, patient := range hospital.Patients {
		reports, err := h.Documents.CountForPatient(ctx, models.KindReport, patient.ID)
		if err != nil {
			utils.InternalServerError(c, "Failed to aggregate documents: "+err.Error())
			return
		}
		bills, err := h.Documents.CountForPatient(ctx, models.KindBill, patient.ID)
		if err != nil {
			utils.InternalServerError(c, "Failed to aggregate documents: "+err.Error())
			return
		}
		prescriptions, err := h.Documents.CountForPatient(ctx, models.KindPrescription, patient.ID)
		if err != nil {
			utils.InternalServerError(c, "Failed to aggregate documents: "+err.Error())
			return
		}
		summaries = append(summaries, PatientSummary{
			Patient:          patient,
			NumReports:       reports,
			NumBills:         bills,
			NumPrescriptions: prescriptions,
		})
	}

	utils.Success(c, "Patients fetched successfully", summaries)
}

// LinkPatientRequest represents the request body for linking an existing
// patient to the calling hospital.
type LinkPatientRequest struct {
	HealthNumber string `json:"healthNumber" binding:"required"`
}

// LinkPatient matches the submitted health number against every stored hash
// and affiliates the matching patient with the calling hospital, issuing the
// pair's access code. The scan is linear because the stored value is a
// one-way hash; acceptable at current scale.
func (h *PatientHandler) LinkPatient(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}

	var req LinkPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var hospital models.Hospital
	if err := h.DB.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		utils.NotFound(c, "Hospital not found")
		return
	}

	var patients []models.Patient
	if err := h.DB.Preload("Hospitals").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var match *models.Patient
	for i := range patients {
		if patients[i].HealthNumberHash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(patients[i].HealthNumberHash), []byte(req.HealthNumber)) == nil {
			match = &patients[i]
			break
		}
	}
	if match == nil {
		utils.NotFound(c, "No patient matches that health number")
		return
	}

	alreadyLinked := false
	for _, linked := range match.Hospitals {
		if linked.ID == hospital.ID {
			alreadyLinked = true
			break
		}
	}
	if !alreadyLinked {
		if err := h.DB.Model(match).Association("Hospitals").Append(&hospital); err != nil {
			utils.InternalServerError(c, "Failed to link patient: "+err.Error())
			return
		}
		match.Hospitals = append(match.Hospitals, hospital)
	}

	if _, err := h.Codes.IssueForPair(c.Request.Context(), match, hospital.ID); err != nil {
		utils.InternalServerError(c, "Failed to issue access code: "+err.Error())
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, match.ID,
		fmt.Sprintf("You were linked to %s.", hospital.Name))
	h.Notifications.Notify(c.Request.Context(), models.OwnerHospital, hospital.ID,
		fmt.Sprintf("Patient %s (%s) was linked to your hospital.", match.Name, match.MedivaultID))

	utils.Success(c, "Patient linked successfully", match)
}
