// cmd/api/middleware.go
// This file contains HTTP middleware used to wrap the router.
// Middleware functions intercept every request before it reaches a handler.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"
)

// recoverPanic catches any runtime panic that occurs in a downstream handler
// and answers with a clean 500 instead of dropping the connection.
func (app *applicationDependencies) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Tell the HTTP server to close the connection after this response.
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const requestIDKey = contextKey("request_id")

// requestID tags every request with an id, reusing the caller's X-Request-ID
// when it looks sane and generating a UUID otherwise. The id is echoed in the
// response header and attached to error logs.
func (app *applicationDependencies) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// enableCORS answers preflight requests and sets CORS headers. With no
// trusted origins configured every origin is allowed.
func (app *applicationDependencies) enableCORS(next http.Handler) http.Handler {
	if len(app.config.CORS.TrustedOrigins) == 0 {
		return cors.AllowAll().Handler(next)
	}

	return cors.New(cors.Options{
		AllowedOrigins: app.config.CORS.TrustedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(next)
}

// rateLimit applies the configured limiter per client IP. If the limiter's
// backend fails the request is let through and the failure logged.
func (app *applicationDependencies) rateLimit(next http.Handler) http.Handler {
	if app.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := app.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			app.logError(r, err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			app.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
