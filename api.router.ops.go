package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// wrapHandler adapts a standard http.Handler to the router signature.
func wrapHandler(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	routes := map[string]httprouter.Handle{
		"/ops/configs":     api.GetConfigs,
		"/ops/stats":       api.GetStatistics,
		"/ops/maintenance": api.Maintenance,
		"/ops/journal":     api.GetJournal,
		"/ops/debug/vars":  GetMemStats,
		"/ops/debug/gc":    api.RunGC,
		"/ops/debug/fos":   api.FreeOSMemory,
	}

	if api.config.ProfilerEnable {
		routes["/ops/debug/pprof/"] = wrapHandler(http.HandlerFunc(pprof.Index))
		routes["/ops/debug/pprof/profile"] = wrapHandler(http.HandlerFunc(pprof.Profile))
		routes["/ops/debug/pprof/trace"] = wrapHandler(http.HandlerFunc(pprof.Trace))
		routes["/ops/debug/pprof/symbol"] = wrapHandler(http.HandlerFunc(pprof.Symbol))
		routes["/ops/debug/pprof/cmdline"] = wrapHandler(http.HandlerFunc(pprof.Cmdline))
		for _, name := range []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"} {
			routes["/ops/debug/pprof/"+name] = wrapHandler(pprof.Handler(name))
		}
	}

	for path, handle := range routes {
		router.GET(path, m.ops(handle))
	}
	return router
}
