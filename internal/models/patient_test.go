package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatientAge(t *testing.T) {
	dob := time.Date(2000, 6, 24, 0, 0, 0, 0, time.UTC)
	patient := Patient{DateOfBirth: &dob}

	t.Run("before the birthday", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 25, patient.Age(at))
	})

	t.Run("on the birthday", func(t *testing.T) {
		at := time.Date(2026, 6, 24, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 26, patient.Age(at))
	})

	t.Run("after the birthday", func(t *testing.T) {
		at := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 26, patient.Age(at))
	})

	t.Run("unknown date of birth", func(t *testing.T) {
		assert.Equal(t, 0, (&Patient{}).Age(time.Now()))
	})

	t.Run("reference before birth clamps to zero", func(t *testing.T) {
		at := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 0, patient.Age(at))
	})
}
