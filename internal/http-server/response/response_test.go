package response

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]any{"school_id": "school-1"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, data, resp.Data)
	assert.Empty(t, resp.Error)
}

func TestDenied(t *testing.T) {
	resp := Denied("TRIAL_EXPIRED", "التجربة منتهية")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "TRIAL_EXPIRED", resp.Reason)
	assert.Equal(t, "التجربة منتهية", resp.Message)
}

func TestValidationError(t *testing.T) {
	type form struct {
		Email  string  `validate:"required,email"`
		Amount float64 `validate:"gt=0"`
	}

	err := validator.New().Struct(form{Email: "not-an-email", Amount: -1})
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)

	resp := ValidationError(errs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Amount must be greater than 0")
}
