package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/HamzaSid020/MediVault/internal/middleware"
	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"
	"github.com/HamzaSid020/MediVault/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentHandler handles reports, bills and prescriptions. The three kinds
// share one handler; the :kind route parameter picks which shelf is in play.
type DocumentHandler struct {
	DB            *gorm.DB
	Documents     *services.DocumentService
	Selections    *services.SelectionService
	Notifications *services.NotificationService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(db *gorm.DB, documents *services.DocumentService, selections *services.SelectionService, notifications *services.NotificationService) *DocumentHandler {
	return &DocumentHandler{DB: db, Documents: documents, Selections: selections, Notifications: notifications}
}

func documentKind(c *gin.Context) (models.DocumentKind, bool) {
	kind, ok := models.ParseDocumentKind(c.Param("kind"))
	if !ok {
		utils.BadRequest(c, "Unknown document kind: "+c.Param("kind"))
		return "", false
	}
	return kind, true
}

// Upload handles a hospital uploading a document for one of its patients.
// Expects multipart form fields: file, name, category, patientId and an
// optional comma-separated refs list of related document IDs.
func (h *DocumentHandler) Upload(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	name := c.PostForm("name")
	patientID := c.PostForm("patientId")
	if name == "" || patientID == "" {
		utils.BadRequest(c, "Fields name and patientId are required")
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

	var refIDs []string
	if refs := c.PostForm("refs"); refs != "" {
		for _, id := range strings.Split(refs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				refIDs = append(refIDs, id)
			}
		}
	}

	doc := models.Document{
		Kind:       kind,
		Category:   c.PostForm("category"),
		Name:       name,
		PatientID:  patientID,
		HospitalID: hospitalID,
	}

	var reader io.Reader
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		doc.FileName = uuid.NewString() + "_" + header.Filename
		reader = file
	}

	if err := h.Documents.Create(c.Request.Context(), &doc, reader, refIDs); err != nil {
		if err == services.ErrInvalidInput {
			utils.BadRequest(c, "Invalid document payload")
		} else {
			utils.InternalServerError(c, "Failed to create document: "+err.Error())
		}
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, patientID,
		fmt.Sprintf("A new %s (%s) was added to your records.", kind, doc.Name))

	utils.Created(c, "Document created successfully", doc)
}

// List handles fetching documents of one kind. Patients see their own
// records across hospitals; hospitals see the records they issued.
func (h *DocumentHandler) List(c *gin.Context) {
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if patientID, ok := middleware.GetPatientIDFromContext(c); ok {
		docs, err := h.Documents.ListForPatient(ctx, kind, patientID)
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch documents: "+err.Error())
			return
		}
		utils.Success(c, "Documents fetched successfully", docs)
		return
	}
	if hospitalID, ok := middleware.GetHospitalIDFromContext(c); ok {
		docs, err := h.Documents.ListForHospital(ctx, kind, hospitalID)
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch documents: "+err.Error())
			return
		}
		utils.Success(c, "Documents fetched successfully", docs)
		return
	}
	utils.Unauthorized(c, "No patient or hospital identity found in token")
}

// SelectRequest represents the request body for marking a document as the
// pending download.
type SelectRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
}

// Select handles a patient marking one of their documents as the pending
// download. A later selection of the same kind replaces this one.
func (h *DocumentHandler) Select(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	var req SelectRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doc, err := h.Documents.Get(c.Request.Context(), kind, req.DocumentID)
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Failed to fetch document: "+err.Error())
		}
		return
	}
	if doc.PatientID != patientID {
		utils.Forbidden(c, "Document does not belong to you")
		return
	}

	if err := h.Selections.Select(c.Request.Context(), userID, kind, doc.HospitalID, doc.ID); err != nil {
		utils.InternalServerError(c, "Failed to record selection: "+err.Error())
		return
	}

	utils.Success(c, "Document selected", gin.H{"documentId": doc.ID, "hospitalId": doc.HospitalID})
}

// ConfirmRequest represents the request body for confirming a pending
// download with a hospital access code.
type ConfirmRequest struct {
	Code string `json:"code" binding:"required"`
}

// Confirm handles verifying the submitted access code against the pending
// selection's hospital. On success the selection is consumed and the client
// may download the unlocked document; a wrong code leaves the selection
// pending for another attempt.
func (h *DocumentHandler) Confirm(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	var req ConfirmRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	documentID, verified, err := h.Selections.Confirm(c.Request.Context(), userID, kind, patientID, req.Code)
	if err != nil {
		if err == services.ErrNoSelection {
			utils.BadRequest(c, "No document is selected for download")
		} else {
			utils.InternalServerError(c, "Failed to confirm selection: "+err.Error())
		}
		return
	}
	if !verified {
		// A mismatch is routine negative input, not an authorization failure;
		// the selection stays pending so the patient can try again.
		utils.Success(c, "Access code mismatch", gin.H{"verified": false})
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, patientID,
		fmt.Sprintf("Access code verified for a %s download.", kind))

	utils.Success(c, "Access code verified", gin.H{"documentId": documentID, "verified": true})
}

// ClearSelection handles discarding the pending selection without
// verification.
func (h *DocumentHandler) ClearSelection(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	if err := h.Selections.Clear(c.Request.Context(), userID, kind); err != nil {
		utils.InternalServerError(c, "Failed to clear selection: "+err.Error())
		return
	}
	utils.Success(c, "Selection cleared", nil)
}

// Download streams a document's file to its owning patient.
func (h *DocumentHandler) Download(c *gin.Context) {
	patientID, ok := middleware.GetPatientIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Patient identity not found in token")
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	doc, err := h.Documents.Get(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Failed to fetch document: "+err.Error())
		}
		return
	}
	if doc.PatientID != patientID {
		utils.Forbidden(c, "Document does not belong to you")
		return
	}

	reader, fileName, err := h.Documents.Open(c.Request.Context(), kind, doc.ID)
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "Document has no file attached")
		} else {
			utils.InternalServerError(c, "Failed to open document file: "+err.Error())
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already sent; nothing useful to return to the client.
		return
	}
}

// Delete handles a hospital removing a document it issued. Back-references
// from sibling documents are scrubbed before the row and file go away.
func (h *DocumentHandler) Delete(c *gin.Context) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Hospital identity not found in token")
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	doc, err := h.Documents.Get(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		if err == services.ErrNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Failed to fetch document: "+err.Error())
		}
		return
	}

	if err := h.Documents.Delete(c.Request.Context(), kind, doc.ID, hospitalID); err != nil {
		switch err {
		case services.ErrNotFound:
			utils.NotFound(c, "Document not found")
		case services.ErrForbidden:
			utils.Forbidden(c, "Document belongs to another hospital")
		default:
			utils.InternalServerError(c, "Failed to delete document: "+err.Error())
		}
		return
	}

	h.Notifications.Notify(c.Request.Context(), models.OwnerPatient, doc.PatientID,
		fmt.Sprintf("A %s (%s) was removed from your records.", kind, doc.Name))

	utils.Success(c, "Document deleted successfully", nil)
}
