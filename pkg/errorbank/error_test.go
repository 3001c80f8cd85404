package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestViolation(t *testing.T) {
	err := Violation("rating", "must be between 0 and 5")

	assert.Equal(t, KindUnprocessableEntity, err.Kind())
	assert.Equal(t, "rating must be between 0 and 5", err.Message())
	assert.Equal(t, "rating", err.Details()["field"])
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode())
	assert.Equal(t, codes.FailedPrecondition, err.GRPCCode())
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := From(plain)

	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("order not found")
	wrapped := fmt.Errorf("get order: %w", base)

	assert.Equal(t, KindNotFound, From(wrapped).Kind())
}
