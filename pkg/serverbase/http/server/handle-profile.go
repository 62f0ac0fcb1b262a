package sbhttpserver

import (
	"net/http/pprof"

	sbhttpbase "github.com/avdrh/abtest/pkg/serverbase/http/base"
	log "github.com/sirupsen/logrus"
)

func (instance *Instance) registerProfileHandlers() {
	log.Printf("registering profile handlers")

	handlers := map[string]sbhttpbase.HandleFunc{
		"/debug/pprof/":        sbhttpbase.HandleStdFunc(pprof.Index),
		"/debug/pprof/cmdline": sbhttpbase.HandleStdFunc(pprof.Cmdline),
		"/debug/pprof/profile": sbhttpbase.HandleStdFunc(pprof.Profile),
		"/debug/pprof/symbol":  sbhttpbase.HandleStdFunc(pprof.Symbol),
		"/debug/pprof/trace":   sbhttpbase.HandleStdFunc(pprof.Trace),
	}
	for _, profile := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		handlers["/debug/pprof/"+profile] = sbhttpbase.HandleStd(pprof.Handler(profile))
	}
	for path, handler := range handlers {
		instance.RegisterHandler(&HandleDescription{
			Path:    path,
			Method:  "GET",
			Handler: handler,
		})
	}
}
