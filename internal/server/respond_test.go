package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperjump/kensaku/internal/errs"
)

func TestStatusFor_InternalWinsOverWrappedCause(t *testing.T) {
	err := errs.Internal("catalog lookup", errs.NotFound("ordinal %d", 3))
	assert.Equal(t, http.StatusInternalServerError, statusFor(err))
	assert.Equal(t, "InternalError", errKind(err))

	assert.Equal(t, http.StatusNotFound, statusFor(errs.NotFound("vec_9")))
}
