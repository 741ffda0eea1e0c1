package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"planifia/internal/app"
)

type workspaceKey struct{}

func workspaceFrom(ctx context.Context) *app.Workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*app.Workspace)
	return ws
}

// requireSession lets a request through only with a bearer token of the
// current session, and attaches that session's workspace.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Missing bearer token"))
			return
		}

		current, err := h.app.Session(ctx)
		if err != nil && !app.IsNoSession(err) {
			h.logRequest(r, zap.ErrorLevel, "Session lookup failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Session error"))
			return
		}
		if err := h.tokens.Verify(raw, current); err != nil {
			h.logRequest(r, zap.InfoLevel, "Rejected token", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Not signed in"))
			return
		}

		ws, err := h.app.Workspace(ctx)
		if err != nil {
			if app.IsNoSession(err) {
				writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Not signed in"))
				return
			}
			h.logRequest(r, zap.ErrorLevel, "Workspace unavailable", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Session error"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, workspaceKey{}, ws)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := zap.InfoLevel
		if rec.status >= http.StatusInternalServerError {
			level = zap.ErrorLevel
		}
		h.logRequest(r, level, "Request handled",
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// logRequest logs with the route name, method and path of r.
func (h *Handler) logRequest(r *http.Request, level zapcore.Level, message string, fields ...zap.Field) {
	routeName := ""
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
	}
	all := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}, fields...)

	if ce := h.logger.Check(level, message); ce != nil {
		ce.Write(all...)
	}
}
