package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Daddtdrey/eatai/internal/config"
	"github.com/Daddtdrey/eatai/internal/orders"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	requestIDKey
)

// AuthMiddleware resolves the caller's identity from the gateway-verified
// headers and attaches the resolved actor to the request context.
// Credential verification itself happens upstream; this layer trusts the
// user id it is handed.
func AuthMiddleware(roles *config.Roles) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			email := r.Header.Get("X-User-Email")

			role, vendor := roles.Lookup(email)
			actor := orders.Actor{
				UserID: userID,
				Email:  email,
				Role:   role,
				Vendor: vendor,
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromContext(ctx context.Context) orders.Actor {
	if actor, ok := ctx.Value(actorKey).(orders.Actor); ok {
		return actor
	}
	return orders.Actor{Role: config.RoleCustomer}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware throttles per caller. Checkout sits behind this so a
// stuck client retry loop can't hammer the order transaction.
func RateLimitMiddleware(r rate.Limit, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[key]; ok {
			return l
		}
		l := rate.NewLimiter(r, burst)
		limiters[key] = l
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			key := req.Header.Get("X-User-ID")
			if key == "" {
				key = req.RemoteAddr
			}
			if !limiterFor(key).Allow() {
				respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
