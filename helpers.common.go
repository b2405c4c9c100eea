package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/julienschmidt/httprouter"
)

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

// errInvalidID is returned when a path id is not a number at all.
var errInvalidID = errors.New("id provided is not a valid number")

// UIDHandler generates unique identifiers with a given prefix.
type UIDHandler interface {
	Generate(prefix string) string
}

type uuidHandler struct {
	gen uuid.Generator
}

// NewIDsHandler returns a generator of random v4 uuid based identifiers.
func NewIDsHandler() UIDHandler {
	return &uuidHandler{gen: uuid.NewGen()}
}

func (h *uuidHandler) Generate(prefix string) string {
	id, err := h.gen.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	return prefix + ":" + id.String()
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// RequestNumberFromContext returns the request sequence number or 0.
func RequestNumberFromContext(ctx context.Context) uint64 {
	num, _ := ctx.Value(RequestNumberContextKey).(uint64)
	return num
}

// ReadIDParam extracts the named integer path parameter. Non numeric
// values are rejected with errInvalidID. Numbers below 1 are returned
// as is since they can never match a stored record.
func ReadIDParam(ps httprouter.Params, name string) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName(name), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

// GetRequestSourceIP returns the caller IP. Proxy headers win over
// the connection address when they carry a valid IP.
func GetRequestSourceIP(r *http.Request) string {
	candidates := []string{r.Header.Get("X-Real-IP")}
	candidates = append(candidates, strings.Split(r.Header.Get("X-Forwarded-For"), ",")...)
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		candidates = append(candidates, host)
	}
	for _, ip := range candidates {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}

// IsAppRunningInDocker reports whether /.dockerenv exists.
func IsAppRunningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
