// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/tvinput/internal/domain/session/manager"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

// SessionRegistry is the part of the dispatcher the admin surface needs.
type SessionRegistry interface {
	Sessions() []manager.SessionInfo
	ForceRelease(handle model.Handle) error
}

// InputLister lists the inputs a host serves.
type InputLister interface {
	Inputs() []model.InputInfo
}

const (
	adminRequestLimit = 120
	adminWindow       = time.Minute
)

type inputView struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Type        string `json:"type"`
	Passthrough bool   `json:"passthrough"`
	ParentID    string `json:"parent_id,omitempty"`
}

// NewAdminRouter builds the admin HTTP surface. inputs may be nil.
func NewAdminRouter(sessions SessionRegistry, inputs InputLister) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(httprate.Limit(
		adminRequestLimit,
		adminWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(adminWindow.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
		}),
	))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sessions", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, sessions.Sessions())
		})
		r.Delete("/sessions/{handle}", func(w http.ResponseWriter, req *http.Request) {
			handle := model.Handle(chi.URLParam(req, "handle"))
			if !model.IsSafeHandle(handle) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session handle"})
				return
			}
			err := sessions.ForceRelease(handle)
			switch {
			case errors.Is(err, manager.ErrSessionNotFound):
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			case err != nil:
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		})
		r.Get("/inputs", func(w http.ResponseWriter, _ *http.Request) {
			out := []inputView{}
			if inputs != nil {
				for _, in := range inputs.Inputs() {
					out = append(out, inputView{
						ID:          in.ID,
						Label:       in.Label,
						Type:        string(in.Type),
						Passthrough: in.Passthrough,
						ParentID:    in.ParentID,
					})
				}
			}
			writeJSON(w, http.StatusOK, out)
		})
	})

	return otelhttp.NewHandler(r, "tvinput-admin")
}

// accessLog logs each request and tags the server span with the matched route.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := log.ContextWithCorrelationID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		trace.SpanFromContext(ctx).SetAttributes(telemetry.HTTPAttributes(r.Method, route, status)...)
		logger := log.WithComponentFromContext(ctx, "admin")
		logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("admin request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
