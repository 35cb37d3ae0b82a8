package services

import (
	"strings"
	"unicode"
)

// GenerateMedivaultID derives the human-facing patient identifier from the
// patient's name and phone number: the uppercased first letter of the first
// name, the uppercased first four letters of the last name (fewer if the last
// name is shorter), and the last four digits of the phone number. The result
// is 6 to 9 characters and deterministic for identical inputs.
//
// No collision check happens here; two patients with the same initials and
// phone suffix produce the same ID. The unique index on patients.medivault_id
// is what rejects the second registration.
func GenerateMedivaultID(firstName, lastName, phoneNumber string) string {
	// Slice runes, not bytes, so names like "Øyvind" keep whole characters.
	firstLetter := ""
	if runes := []rune(firstName); len(runes) > 0 {
		firstLetter = strings.ToUpper(string(runes[0]))
	}

	lastPart := []rune(lastName)
	if len(lastPart) > 4 {
		lastPart = lastPart[:4]
	}

	return firstLetter + strings.ToUpper(string(lastPart)) + lastFourDigits(phoneNumber)
}

// lastFourDigits strips everything that is not a decimal digit and returns
// the final four digits, or fewer if the number is shorter.
func lastFourDigits(phoneNumber string) string {
	var digits []rune
	for _, r := range phoneNumber {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}
