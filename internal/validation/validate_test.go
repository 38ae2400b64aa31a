package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/validation"
)

type signup struct {
	Email string  `json:"email" validate:"required,email"`
	Age   int     `json:"age" validate:"required,min=18,max=100"`
	Name  *string `json:"name" validate:"omitempty,min=1"`
}

func TestStruct_OK(t *testing.T) {
	assert.NoError(t, validation.Struct(signup{Email: "a@b.co", Age: 18}))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := validation.Struct(signup{Email: "nope", Age: 17})

	assert.True(t, errors.Is(err, svcErr.ErrValidation))
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "age must be at least 18")
}

func TestStruct_PointerFields(t *testing.T) {
	empty := ""
	err := validation.Struct(signup{Email: "a@b.co", Age: 101, Name: &empty})

	assert.Contains(t, err.Error(), "age must be at most 100")
	assert.Contains(t, err.Error(), "name must be at least 1 characters")
}

func TestVar(t *testing.T) {
	assert.NoError(t, validation.Var("amount", 10.5, "gt=0"))
	assert.Error(t, validation.Var("amount", 0.0, "gt=0"))
}
