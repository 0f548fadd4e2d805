package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"valid", "mei@totoro.jp", "susuwatari", nil},
		{"legacy weak password accepted at sign-in", "mei@totoro.jp", "abc", nil},
		{"empty password", "mei@totoro.jp", "", ErrPasswordEmpty},
		{"no at sign", "meitotoro.jp", "susuwatari", ErrEmailInvalid},
		{"no domain dot", "mei@totorojp", "susuwatari", ErrEmailInvalid},
		{"empty local part", "@totoro.jp", "susuwatari", ErrEmailInvalid},
		{"trailing at", "mei@", "susuwatari", ErrEmailInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCredentials(tc.email, tc.password)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateSignup(t *testing.T) {
	const good = "Susuwatari.8"

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := ValidateSignup("Mei", "mei@totoro.jp", good, "Totoro-199x")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("empty name", func(t *testing.T) {
		err := ValidateSignup("   ", "mei@totoro.jp", good, good)
		assert.ErrorIs(t, err, ErrNameEmpty)
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateSignup("Mei", "mei@totoro.jp", good, good))
	})
}

func TestValidateSignup_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all classes present", "Susuwatari.8", true},
		{"special from punctuation set", `Catbus99!`, true},
		{"too short", "Ab1!xyz", false},
		{"short and single class", "abcdef", false},
		{"long but single class", "abcdefgh", false},
		{"missing special character", "Abcdefg1", false},
		{"missing digit", "Abcdefg!", false},
		{"missing upper case", "abcdefg1!", false},
		{"missing lower case", "ABCDEFG1!", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignup("Mei", "mei@totoro.jp", tc.password, tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrPasswordWeak)
			}
		})
	}
}
