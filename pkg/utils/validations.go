package utils

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
)

type CustomValidator struct {
	Validator *validator.Validate
}

// NewCustomValidator wraps v, or a fresh validator when v is nil, and
// registers the custom tags on it.
func NewCustomValidator(v *validator.Validate) *CustomValidator {
	if v == nil {
		v = validator.New()
	}
	Validator := &CustomValidator{v}
	Validator.ValidatorRegistery()
	return Validator
}

func (c *CustomValidator) ValidatorRegistery() {
	c.Validator.RegisterValidation("isemail", c.IsValidEmail)
	c.Validator.RegisterValidation("isphone", c.IsValidPhone)
	c.Validator.RegisterValidation("matchtype", c.IsMatchType)
	c.Validator.RegisterValidation("sessionid", c.IsSessionID)
}

func (c *CustomValidator) IsValidEmail(fl validator.FieldLevel) bool {
	email := strings.TrimSpace(fl.Field().String())
	_, err := mail.ParseAddress(email)
	return err == nil
}

// IsValidPhone accepts international numbers of 8 to 15 digits with an
// optional leading '+'.
func (c *CustomValidator) IsValidPhone(fl validator.FieldLevel) bool {
	phoneNumber := strings.TrimPrefix(strings.TrimSpace(fl.Field().String()), "+")
	if len(phoneNumber) < 8 || len(phoneNumber) > 15 {
		return false
	}
	for _, char := range phoneNumber {
		if !unicode.IsDigit(char) {
			return false
		}
	}
	return true
}

func (c *CustomValidator) IsMatchType(fl validator.FieldLevel) bool {
	switch entities.MatchType(strings.ToUpper(fl.Field().String())) {
	case entities.MatchExact, entities.MatchContains, entities.MatchRegex:
		return true
	}
	return false
}

// IsSessionID allows ids that are safe in URLs and file names.
func (c *CustomValidator) IsSessionID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return true
	}
	if len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
