package main

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var EmptyData = struct{}{}

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger        *zap.Logger
	config        *Config
	stats         *Statistics
	mode          *Maintenance
	clock         Clocker
	idsHandler    UIDHandler
	validator     *InputValidator
	limiter       *ipRateLimiter
	sellerService SellerServiceProvider
	bookService   BookServiceProvider
	journal       Journal
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(
	logger *zap.Logger,
	config *Config,
	stats *Statistics,
	clock Clocker,
	idsHandler UIDHandler,
	ss SellerServiceProvider,
	bs BookServiceProvider,
	journal Journal,
) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	api := &APIHandler{
		logger:        logger,
		config:        config,
		stats:         stats,
		mode:          m,
		clock:         clock,
		idsHandler:    idsHandler,
		validator:     NewInputValidator(),
		sellerService: ss,
		bookService:   bs,
		journal:       journal,
	}
	if config != nil && config.RateLimit.Enable {
		api.limiter = newIPRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst, clock)
	}
	return api
}

// errorStatus classifies a service or validation error into an http status.
func errorStatus(err error) int {
	var verrs ValidationErrors
	switch {
	case errors.Is(err, ErrSellerNotFound), errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPublicationYear),
		errors.Is(err, ErrUnknownSeller),
		errors.Is(err, errInvalidID),
		errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorData returns the details attached to an error response. Internal
// failures never leak their cause to the client.
func errorData(status int, err error) interface{} {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return verrs
	case status == http.StatusInternalServerError:
		return EmptyData
	default:
		return err.Error()
	}
}

// sendError logs the failure then writes the error envelope.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	requestID := RequestIDFromContext(r.Context())
	logger := api.GetLoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("request.id", requestID), zap.Error(err))
	} else {
		logger.Warn(message, zap.String("request.id", requestID), zap.Int("status", status), zap.Error(err))
	}
	errResp := NewAPIError(requestID, status, message, errorData(status, err))
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendResponse writes a success payload and logs any write failure.
func (api *APIHandler) sendResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := WriteResponse(r.Context(), w, status, data); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response",
			zap.String("request.id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
}

// routerRequestID returns the id of a request the router answers itself,
// outside of any middlewares chain. One is generated when none is set.
func (api *APIHandler) routerRequestID(w http.ResponseWriter, r *http.Request) string {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	id := api.idsHandler.Generate(RequestIDPrefix)
	w.Header().Set("X-Request-ID", id)
	return id
}

// NotFound provides the handler used when no route matched.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError(api.routerRequestID(w, r), http.StatusNotFound, "resource not found", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send not found response", zap.String("request.path", r.URL.Path), zap.Error(err))
		}
	})
}

// MethodNotAllowed provides the handler used when a route exists
// with a different method.
func (api *APIHandler) MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := NewAPIError(api.routerRequestID(w, r), http.StatusMethodNotAllowed, "method not allowed", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send method not allowed response", zap.String("request.path", r.URL.Path), zap.Error(err))
		}
	})
}

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Bookstore api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Maintenance handles request to enable or disable the maintenance mode of the service and respond
// to client requests with predefined message when the service is in maintenance mode.
// Enable the maintenance mode : /ops/maintenance?status=enable&msg=message-to-be-displayed-to-users
// Disable the maintenance mode: /ops/maintenance?status=disable
func (api *APIHandler) Maintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	var response map[string]interface{}

	q := r.URL.Query()
	mstatus := "show"
	if ps.ByName("status") != mstatus {
		mstatus = q.Get("status")
	}

	switch mstatus {
	case "enable":
		msg, started := q.Get("msg"), api.clock.Now().UTC()
		api.mode.mu.Lock()
		api.mode.message = msg
		api.mode.started = started
		api.mode.mu.Unlock()
		api.mode.enabled.Store(true)
		response = map[string]interface{}{
			"requestid":           requestID,
			"maintenance.started": started.Format(time.RFC1123),
			"maintenance.message": msg,
			"message":             "Maintenance mode enabled successfully.",
		}

	case "disable":
		api.mode.enabled.Store(false)
		api.mode.mu.Lock()
		api.mode.started = time.Time{}.UTC()
		api.mode.message = ""
		api.mode.mu.Unlock()
		response = map[string]interface{}{
			"requestid": requestID,
			"message":   "Maintenance mode disabled successfully.",
		}

	case "show":
		api.mode.mu.RLock()
		response = map[string]interface{}{
			"message": "service currently unvailable.",
			"reason":  api.mode.message,
			"since":   api.mode.started.Format(time.RFC1123),
		}
		api.mode.mu.RUnlock()
		w.WriteHeader(http.StatusServiceUnavailable)

	default:
		w.WriteHeader(http.StatusBadRequest)
		response = map[string]interface{}{
			"requestid": requestID,
			"message":   "status query parameter must be enable or disable.",
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.logger.Error("failed to send maintenance response",
			zap.String("request.id", requestID),
			zap.String("request.maintenance", mstatus),
			zap.Error(err),
		)
	}
}

// export goroutines to be used by expvar handler.
var goroutines = expvar.NewInt("goroutines")

// GetMemStats returns memory statistics with number of goroutines in json.
func GetMemStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	goroutines.Set(int64(runtime.NumGoroutine()))
	expvar.Handler().ServeHTTP(w, r)
}

// RunGC forces the run of the garbage collector asynchronously.
func (api *APIHandler) RunGC(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	go runtime.GC()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]string{
			"called": "go runtime.GC()",
		},
	); err != nil {
		api.logger.Error("failed to send run gc response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// FreeOSMemory forces the garbage collector to and tries to returns the memory
// back to the operating system in an asynchronous fashion.
func (api *APIHandler) FreeOSMemory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	go debug.FreeOSMemory()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]string{
			"called": "go debug.FreeOSMemory()",
		},
	); err != nil {
		api.logger.Error("failed to send free os memory response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetStatistics provides useful details about the application to the internal ops users.
// The stats returns by this handler do not contain the ops request which triggered that.
// That is why we remove 1 from the called field value in order to match the status stats.
func (api *APIHandler) GetStatistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	api.mode.mu.RLock()
	maintenanceModeStartedTime := api.mode.started.String()
	if api.mode.started.IsZero() {
		maintenanceModeStartedTime = ""
	}
	maintenanceMessage := api.mode.message
	api.mode.mu.RUnlock()

	called := atomic.LoadUint64(&api.stats.called)
	if called > 0 {
		called--
	}

	api.stats.mu.RLock()
	status := make(map[string]uint64, len(api.stats.status))
	for code, count := range api.stats.status {
		status[strconv.Itoa(code)] = count
	}
	api.stats.mu.RUnlock()

	err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid":     requestID,
			"app.version":   api.stats.version,
			"app.container": api.stats.container,
			"app.platform":  api.stats.platform,
			"go.version":    api.stats.runtime,
			"called":        called,
			"started":       api.stats.started.Format(time.RFC1123),
			"uptime":        fmt.Sprintf("%.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"maintenance": map[string]interface{}{
				"enabled": api.mode.enabled.Load(),
				"started": maintenanceModeStartedTime,
				"message": maintenanceMessage,
			},
			"status": status,
		},
	)
	if err != nil {
		api.logger.Error("failed to send statistics response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetConfigs serves current in-use configurations/settings. Secrets
// are excluded by their json tags.
func (api *APIHandler) GetConfigs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"configs": api.config,
		},
	); err != nil {
		api.logger.Error("failed to send settings response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetJournal serves the latest recorded change events. The optional `limit`
// query parameter caps the number of entries, up to the configured journal size.
func (api *APIHandler) GetJournal(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if api.journal == nil {
		api.sendError(w, r, http.StatusNotFound, "events journal is not enabled", errors.New("journal disabled"))
		return
	}

	limit := api.config.Events.JournalSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			api.sendError(w, r, http.StatusBadRequest, "limit must be a positive number", fmt.Errorf("invalid limit %q", v))
			return
		}
		if n < limit {
			limit = n
		}
	}

	entries, err := api.journal.Latest(r.Context(), limit)
	if err != nil {
		api.sendError(w, r, http.StatusInternalServerError, "failed to read events journal", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, map[string]interface{}{
		"total":   len(entries),
		"entries": entries,
	})
}
