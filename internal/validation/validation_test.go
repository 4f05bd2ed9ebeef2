package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devextech/devex-api/internal/apperr"
)

type profile struct {
	Name  string `json:"name" validate:"required" label:"Name"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image,omitempty" validate:"omitempty,url" label:"Image"`
}

type signUp struct {
	FirstName       string  `json:"firstName" validate:"min=2" label:"First name"`
	Password        string  `json:"password" validate:"min=8" label:"Password"`
	ConfirmPassword string  `json:"confirmPassword" validate:"eqfield=Password" msg:"Passwords do not match."`
	Terms           bool    `json:"terms" validate:"required" msg:"You must accept the terms and conditions."`
	Phone           string  `json:"phone" validate:"mindigits=10" label:"Phone number"`
	User            profile `json:"user"`
}

func validSignUp() signUp {
	return signUp{
		FirstName:       "Ada",
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
		Terms:           true,
		Phone:           "+91 98765-43210",
		User:            profile{Name: "Ada Lovelace", Email: "ada@example.com"},
	}
}

func TestStruct_Valid(t *testing.T) {
	s := validSignUp()
	assert.NoError(t, Struct(&s))
}

func TestStruct_FieldKeyedMessages(t *testing.T) {
	s := signUp{
		FirstName:       "A",
		Password:        "short",
		ConfirmPassword: "different",
		Phone:           "12345",
		User:            profile{Email: "not-an-email", Image: "nope"},
	}

	err := Struct(&s)
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	assert.Equal(t, []string{"First name must be at least 2 characters."}, appErr.Fields["firstName"])
	assert.Equal(t, []string{"Password must be at least 8 characters."}, appErr.Fields["password"])
	assert.Equal(t, []string{"Passwords do not match."}, appErr.Fields["confirmPassword"])
	assert.Equal(t, []string{"You must accept the terms and conditions."}, appErr.Fields["terms"])
	assert.Equal(t, []string{"Phone number must be at least 10 digits."}, appErr.Fields["phone"])
	assert.Equal(t, []string{"Name is required."}, appErr.Fields["user.name"])
	assert.Equal(t, []string{"Please enter a valid email address."}, appErr.Fields["user.email"])
	assert.Equal(t, []string{"Image must be a valid URL."}, appErr.Fields["user.image"])
	assert.Contains(t, appErr.Message, "First name must be at least 2 characters.")
}
