package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nilecommerce/admin-service/api/responses"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// RateLimiterStore is satisfied by the redis client.
type RateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// AuthRateLimitPolicy sets the fixed-window limits for one auth surface.
// A zero window or all-zero limits disables the middleware entirely.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit throttles login/register traffic per source IP and, when the
// body carries one, per email. Emails are sha256-hashed before they become
// redis keys.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	limiter := &authLimiter{policy: policy, store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.blocked(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authLimiter struct {
	policy AuthRateLimitPolicy
	store  RateLimiterStore
	logg   *logger.Logger
}

// blocked reports whether the request was rejected; it writes the response
// itself when it was.
func (l *authLimiter) blocked(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	if l.policy.ipLimit > 0 {
		ip := clientIP(r)
		if ip != "" && l.exceeded(ctx, w, "rl:ip:"+l.policy.name+":"+ip, l.policy.ipLimit, "ip", ip) {
			return true
		}
	}

	if l.policy.emailLimit > 0 {
		email, ok := l.peekEmail(ctx, w, r)
		if !ok {
			return true
		}
		if email != "" {
			hash := sha256.Sum256([]byte(email))
			key := hex.EncodeToString(hash[:])
			if l.exceeded(ctx, w, "rl:email:"+l.policy.name+":"+key, l.policy.emailLimit, "email", key) {
				return true
			}
		}
	}
	return false
}

// exceeded counts the request against key; true means it wrote a 429 or 500.
func (l *authLimiter) exceeded(ctx context.Context, w http.ResponseWriter, key string, limit int, scope, subject string) bool {
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rate limiting"))
		return true
	}
	if count <= int64(limit) {
		return false
	}

	if l.logg != nil {
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"policy":         l.policy.name,
			"scope":          scope,
			"subject":        subject,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(l.policy.window.Seconds()),
		})
		l.logg.Warn(logCtx, "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return true
}

// peekEmail reads the email field out of the body and restores the body for
// the handler. ok=false means an error response was already written.
func (l *authLimiter) peekEmail(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read request"))
		return "", false
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", true
	}
	return strings.ToLower(strings.TrimSpace(body.Email)), true
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
