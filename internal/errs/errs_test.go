package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAction_CopiesError(t *testing.T) {
	original := NewUnauthorizedError("Incorrect email or password", false)
	action := &Action{Type: ActionTypeAuthenticate, Value: "Basic"}

	withAction := original.WithAction(action)

	require.NotSame(t, original, withAction)
	assert.Nil(t, original.Action)
	assert.Equal(t, action, withAction.Action)
	assert.Equal(t, original.Message, withAction.Message)
	assert.Equal(t, http.StatusUnauthorized, withAction.Status)
	assert.Equal(t, "UNAUTHORIZED", withAction.Code)
}

func TestWithMessage_KeepsEverythingElse(t *testing.T) {
	original := NewUnprocessableEntityError("Validation failed", false, []FieldError{{Field: "bom_id", Error: "must be at least 0"}})

	changed := original.WithMessage("Проверьте параметры")

	assert.Equal(t, "Validation failed", original.Message)
	assert.Equal(t, "Проверьте параметры", changed.Message)
	assert.Equal(t, original.Errors, changed.Errors)
	assert.Equal(t, http.StatusUnprocessableEntity, changed.Status)
}
