package sbhttpserver

import (
	"io"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// exhaustRequest drains what the handler left of the body so the connection can be reused.
func exhaustRequest(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
	next(request)

	if request.Request.Body != nil {
		_, _ = io.Copy(io.Discard, request.Request.Body)
		_ = request.Request.Body.Close()
	}
}
