package lhttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	own := NewConflict("already active")
	assert.Same(t, own, FromError(own))

	validation := FromError(errors.Required("subject_id", "body", nil))
	assert.Equal(t, http.StatusBadRequest, validation.Code)
	assert.Nil(t, validation.Err)

	composite := FromError(errors.CompositeValidationError(errors.Required("subject_id", "body", nil)))
	assert.Equal(t, http.StatusBadRequest, composite.Code)

	notFound := FromError(errors.NotFound("experiment %d", 3))
	assert.Equal(t, http.StatusNotFound, notFound.Code)

	internal := FromError(fmt.Errorf("boom"))
	assert.Equal(t, "boom", internal.Error())
	assert.Equal(t, http.StatusInternalServerError, internal.Body().Code)
}

func TestWriteResponse(t *testing.T) {
	tests := []struct {
		err      *HttpError
		expected ErrorBody
	}{
		{NewNotFound("experiment 4 not found"), ErrorBody{Code: 404, Message: "experiment 4 not found"}},
		{NewForbidden(), ErrorBody{Code: 403, Message: "Forbidden"}},
		{&HttpError{Err: fmt.Errorf("connection refused")}, ErrorBody{Code: 500, Message: "Internal server error"}},
	}
	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		tt.err.WriteResponse(recorder, runtime.JSONProducer())

		assert.Equal(t, tt.expected.Code, recorder.Code)
		assert.Equal(t, runtime.JSONMime, recorder.Header().Get("Content-Type"))
		var body ErrorBody
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, tt.expected, body)
	}
}
