package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type birthDate time.Time

type registration struct {
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	Years    int       `json:"experience_years" binding:"gte=0"`
	Born     birthDate `json:"date_of_birth" binding:"required,notfuture"`
	Status   string    `json:"status" binding:"omitempty,oneof=pending confirmed"`
}

func validRegistration() registration {
	return registration{
		Email:    "a@b.com",
		Password: "long-enough",
		Born:     birthDate(time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)),
	}
}

func TestValidRegistrationPasses(t *testing.T) {
	assert.NoError(t, New().Struct(validRegistration()))
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	r := validRegistration()
	r.Email = "not-an-email"
	r.Password = "short"
	r.Years = -1
	r.Status = "lost"

	fields := FieldErrors(New().Struct(r))

	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", fields["password"])
	assert.Equal(t, "Ensure this value is greater than or equal to 0.", fields["experience_years"])
	assert.Equal(t, `"lost" is not a valid choice.`, fields["status"])
}

func TestNotFutureRejectsTomorrow(t *testing.T) {
	r := validRegistration()
	r.Born = birthDate(time.Now().AddDate(0, 0, 2))

	fields := FieldErrors(New().Struct(r))
	assert.Equal(t, "Date cannot be in the future.", fields["date_of_birth"])
}

func TestNotFutureAcceptsToday(t *testing.T) {
	now := time.Now().UTC()
	r := validRegistration()
	r.Born = birthDate(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))

	assert.NoError(t, New().Struct(r))
}

func TestRequiredDate(t *testing.T) {
	r := validRegistration()
	r.Born = birthDate{}

	fields := FieldErrors(New().Struct(r))
	assert.Equal(t, "This field is required.", fields["date_of_birth"])
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("unexpected EOF")))
	assert.Nil(t, FieldErrors(nil))
}
