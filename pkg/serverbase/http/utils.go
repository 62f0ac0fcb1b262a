package sbhttp

import (
	"encoding/json"
	"net/http"

	lhttp "github.com/avdrh/abtest/pkg/http"
	"github.com/go-openapi/runtime"
	log "github.com/sirupsen/logrus"
)

var producer = runtime.JSONProducer()

// ReturnHttpError writes err as a JSON error body. Wrapped internal errors surface as a bare 500.
func ReturnHttpError(w http.ResponseWriter, err *lhttp.HttpError) {
	err.WriteResponse(w, producer)
}

func ReturnError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Debugf("%s: %s", message, err)
	}
	ReturnHttpError(w, &lhttp.HttpError{Code: code, Message: message})
}

func WriteJson(w http.ResponseWriter, code int, result interface{}) error {
	w.Header().Set("Content-Type", runtime.JSONMime)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		return err
	}
	return nil
}
