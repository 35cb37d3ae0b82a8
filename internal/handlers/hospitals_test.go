package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Patient{}, &models.Hospital{}))
	return db
}

func TestHospitalUpdateMe(t *testing.T) {
	db := newTestDB(t)
	hospital := models.Hospital{Name: "General", Email: "desk@general.example"}
	require.NoError(t, db.Create(&hospital).Error)

	notifRepo := &memNotificationRepo{}
	h := NewHospitalHandler(db, services.NewNotificationService(notifRepo, zerolog.Nop()))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(gin.H{"name": "General Renamed"})
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userID", "user-h")
	c.Set("userRole", models.RoleHospital)
	c.Set("hospitalID", hospital.ID)

	h.UpdateMe(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Hospital
	require.NoError(t, db.First(&updated, "id = ?", hospital.ID).Error)
	assert.Equal(t, "General Renamed", updated.Name)
	assert.Equal(t, "desk@general.example", updated.Email)

	// The mutation lands in the hospital's own notification log.
	require.Len(t, notifRepo.entries, 1)
	assert.Equal(t, models.OwnerHospital, notifRepo.entries[0].OwnerType)
	assert.Equal(t, hospital.ID, notifRepo.entries[0].OwnerID)
	assert.False(t, notifRepo.entries[0].Read)
}
