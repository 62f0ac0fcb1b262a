package restapi

import (
	log "github.com/sirupsen/logrus"

	lhttp "github.com/avdrh/abtest/pkg/http"
	sbhttp "github.com/avdrh/abtest/pkg/serverbase/http"
	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
)

// requireAdmin rejects requests whose role header, set by the auth proxy, is not the admin role.
func (a *API) requireAdmin() sbhttpbase.MiddlewareFunc {
	return func(request *sbhttpbase.Request, next sbhttpbase.HandleFunc) {
		if request.Request.Header.Get(a.cfg.AdminRoleHeader) != a.cfg.AdminRoleValue {
			log.WithFields(log.Fields{
				"method": request.Request.Method,
				"path":   request.PathPattern,
			}).Debug("rejected request without admin role")
			sbhttp.ReturnHttpError(request.Writer, lhttp.NewForbidden())
			return
		}
		next(request)
	}
}
