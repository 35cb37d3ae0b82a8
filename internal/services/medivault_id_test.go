package services

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMedivaultID(t *testing.T) {
	t.Run("composes initial, surname prefix and phone digits", func(t *testing.T) {
		id := GenerateMedivaultID("Hamza", "Siddiqui", "1234567890")
		assert.Equal(t, "HSIDD7890", id)
	})

	t.Run("uppercases lowercase input", func(t *testing.T) {
		id := GenerateMedivaultID("jane", "doe", "5551234")
		assert.Equal(t, "JDOE1234", id)
	})

	t.Run("short surname uses what there is", func(t *testing.T) {
		id := GenerateMedivaultID("Al", "Wu", "9876543210")
		assert.Equal(t, "AWU3210", id)
	})

	t.Run("ignores formatting characters in the phone number", func(t *testing.T) {
		id := GenerateMedivaultID("Hamza", "Siddiqui", "(123) 456-7890")
		assert.Equal(t, "HSIDD7890", id)
	})

	t.Run("fewer than four digits uses them all", func(t *testing.T) {
		id := GenerateMedivaultID("Ana", "Silva", "42")
		assert.Equal(t, "ASILV42", id)
	})

	t.Run("multi-byte letters stay whole characters", func(t *testing.T) {
		id := GenerateMedivaultID("Øyvind", "Ådal", "4799887766")
		assert.Equal(t, "ØÅDAL7766", id)
		assert.True(t, utf8.ValidString(id))
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		a := GenerateMedivaultID("Hamza", "Siddiqui", "1234567890")
		b := GenerateMedivaultID("Hamza", "Siddiqui", "1234567890")
		assert.Equal(t, a, b)
	})

	t.Run("length fits the medivault_id column", func(t *testing.T) {
		id := GenerateMedivaultID("Maximilian", "Fitzgerald-Smythe", "00000000001234")
		assert.LessOrEqual(t, len(id), 9)
		assert.GreaterOrEqual(t, len(id), 2)
	})
}
