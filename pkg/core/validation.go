package core

import (
	"errors"
	"strings"
	"unicode"
)

// Credential validation runs before any identity store operation is invoked;
// a failure here never touches store state.
var (
	ErrEmailInvalid     = errors.New("email address is not valid")
	ErrPasswordEmpty    = errors.New("password cannot be empty")
	ErrPasswordWeak     = errors.New("password must be at least 8 characters and include upper case, lower case, a digit and a special character")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNameEmpty        = errors.New("name cannot be empty")
)

// signupPasswordLength is the minimum length the signup form accepts.
// Sign-in is not gated: accounts predate the policy.
const signupPasswordLength = 8

// specialChars is the character class the signup form counts as special.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// ValidateCredentials checks a sign-in pair. Only shape is checked; the
// password policy applies to new accounts, not existing ones.
func ValidateCredentials(email, password string) error {
	if !validEmail(email) {
		return ErrEmailInvalid
	}
	if password == "" {
		return ErrPasswordEmpty
	}
	return nil
}

// ValidateSignup checks the sign-up form fields, including the password
// confirmation the UI collects and the full password policy.
func ValidateSignup(name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameEmpty
	}
	if !validEmail(email) {
		return ErrEmailInvalid
	}
	if !validPassword(password) {
		return ErrPasswordWeak
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// validPassword enforces the signup policy: minimum length plus at least one
// upper case letter, one lower case letter, one digit and one special
// character.
func validPassword(password string) bool {
	if len(password) < signupPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// validEmail applies the same loose shape check the sign-up form does:
// something before and after a single-ish "@", with a dot in the domain.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
