package lhttp

import (
	"fmt"
	"net/http"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	log "github.com/sirupsen/logrus"
)

type HttpError struct {
	Code    int
	Message string
	Err     error
}

// ErrorBody is what an HttpError looks like on the wire.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func FromError(err error) *HttpError {
	if err == nil {
		return nil
	}

	// Own type
	if herr, ok := err.(*HttpError); ok {
		return herr
	}

	// Payload validation
	if verr, ok := err.(errors.Error); ok {
		code := int(verr.Code())
		if code >= errors.CompositeErrorCode || code < 400 {
			code = http.StatusBadRequest
		}
		return &HttpError{
			Code:    code,
			Message: verr.Error(),
		}
	}

	return &HttpError{Err: err}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("got code %d and message \"%s\"", e.Code, e.Message)
}

func (e *HttpError) Clone() *HttpError {
	return &HttpError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
	}
}

// Body hides wrapped internal errors behind a generic 500.
func (e *HttpError) Body() ErrorBody {
	if e.Err != nil {
		return ErrorBody{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}
	return ErrorBody{Code: e.Code, Message: e.Message}
}

func (e *HttpError) WriteResponse(w http.ResponseWriter, producer runtime.Producer) {
	body := e.Body()
	if e.Err != nil {
		log.Errorf("request failed: %s", e.Err)
	}
	w.Header().Set("Content-Type", runtime.JSONMime)
	w.WriteHeader(body.Code)
	if err := producer.Produce(w, body); err != nil {
		panic(err) // let the recovery middleware deal with this
	}
}

func (e *HttpError) WithPayload(payload string) *HttpError {
	e.Message = payload
	return e
}

func NewNotFound(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Message: message}
}

func NewConflict(message string) *HttpError {
	return &HttpError{Code: http.StatusConflict, Message: message}
}

func NewBadRequest(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message}
}

func NewInternalError(message string) *HttpError {
	return &HttpError{Code: http.StatusInternalServerError, Message: message}
}

func NewForbidden() *HttpError {
	return &HttpError{Code: http.StatusForbidden, Message: "Forbidden"}
}
