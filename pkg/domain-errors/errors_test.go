package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeExtraction(t *testing.T) {
	base := New(CodeConflict, "ya existe")

	t.Run("direct", func(t *testing.T) {
		assert.True(t, HasCode(base, CodeConflict))
		assert.False(t, HasCode(base, CodeNotFound))
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("saving: %w", base)
		assert.True(t, HasCode(wrapped, CodeConflict))

		de, ok := AsError(wrapped)
		assert.True(t, ok)
		assert.Equal(t, "ya existe", de.Message)
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		_, ok := AsError(errors.New("boom"))
		assert.False(t, ok)
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "Ha ocurrido un error inesperado.")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", err.Technical)
	assert.Equal(t, "Ha ocurrido un error inesperado.", err.Message)
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeBadRequest:         http.StatusBadRequest,
		CodeInvariantViolation: http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusUnprocessableEntity,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
