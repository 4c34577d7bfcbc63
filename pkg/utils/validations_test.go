package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `validate:"isemail"`
	Phone string `validate:"isphone"`
	Match string `validate:"matchtype"`
	ID    string `validate:"sessionid"`
}

func TestCustomValidator(t *testing.T) {
	v := NewCustomValidator(nil).Validator

	assert.NoError(t, v.Struct(sample{Email: "a@b.co", Phone: "+6281234567", Match: "regex", ID: "sales-1"}))
	assert.NoError(t, v.Struct(sample{Email: "a@b.co", Phone: "6281234567", Match: "EXACT"}))

	assert.Error(t, v.Struct(sample{Email: "nope", Phone: "6281234567", Match: "EXACT"}))
	assert.Error(t, v.Struct(sample{Email: "a@b.co", Phone: "12ab", Match: "EXACT"}))
	assert.Error(t, v.Struct(sample{Email: "a@b.co", Phone: "6281234567", Match: "FUZZY"}))
	assert.Error(t, v.Struct(sample{Email: "a@b.co", Phone: "6281234567", Match: "EXACT", ID: "../etc"}))
}
