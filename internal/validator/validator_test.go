package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name    string   `json:"name" binding:"required,notblank,max=10"`
	Email   string   `json:"email" binding:"required,email"`
	Options []string `json:"options" binding:"len=2,dive,notblank"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(&sample{Name: "Asha", Email: "asha@college.edu", Options: []string{"a", "b"}}))

	fields := Struct(&sample{Name: "   ", Email: "nope", Options: []string{"a", " "}})
	assert.Equal(t, "name must not be blank", fields["name"])
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "options[1]")
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail("not-an-email"))
}
