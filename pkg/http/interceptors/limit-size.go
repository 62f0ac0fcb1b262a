package interceptors

import (
	"fmt"
	"io"
	"net/http"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/avdrh/abtest/pkg/http/wrappers"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// HttpServerLimitSizeInterceptor rejects bodies declared larger than size and truncates undeclared ones at
// size. A zero size disables the limit.
func HttpServerLimitSizeInterceptor(size resource.Quantity) sbhttpbase.MiddlewareFunc {
	limit := size.Value()
	if limit <= 0 {
		return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
			next(request)
		}
	}

	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		if request.Request.ContentLength > limit {
			sbhttp.ReturnError(request.Writer, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body is bigger than %s", size.String()), nil)
			return
		}
		if request.Request.Body == nil {
			next(request)
			return
		}

		next(request.WithBody(&wrappers.Request{
			Original: request.Request.Body,
			Reader:   io.LimitReader(request.Request.Body, limit),
		}))
	}
}
