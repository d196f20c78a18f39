package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// WorkspaceIDKey is the context key for the workspace ID.
const WorkspaceIDKey ContextKey = "workspace_id"

// WorkspaceMiddleware binds every request to a workspace through a signed
// cookie. A missing, tampered or expired cookie gets a fresh workspace.
type WorkspaceMiddleware struct {
	sessions     *session.Manager
	secureCookie *securecookie.SecureCookie
	cookieName   string
	cookieSecure bool
	maxAge       time.Duration
	logger       logger.Logger
}

// NewWorkspaceMiddleware creates the workspace cookie middleware.
func NewWorkspaceMiddleware(
	sessions *session.Manager,
	cookieSecret string,
	cookieName string,
	cookieSecure bool,
	maxAge time.Duration,
	log logger.Logger,
) *WorkspaceMiddleware {
	return &WorkspaceMiddleware{
		sessions:     sessions,
		secureCookie: securecookie.New([]byte(cookieSecret), nil),
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		maxAge:       maxAge,
		logger:       log,
	}
}

// Handler wraps an HTTP handler with workspace resolution.
func (m *WorkspaceMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.resolve(r)
		if !ok {
			ws := m.sessions.Create(r.Context())
			id = ws.ID
			if err := m.setCookie(w, id); err != nil {
				m.logger.Error(r.Context(), "failed to encode workspace cookie", map[string]interface{}{
					"error": err.Error(),
				})
				respondError(w, http.StatusInternalServerError, "failed to create workspace")
				return
			}
		}

		ctx := context.WithValue(r.Context(), WorkspaceIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *WorkspaceMiddleware) resolve(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	var id string
	if err := m.secureCookie.Decode(m.cookieName, cookie.Value, &id); err != nil {
		m.logger.Warn(r.Context(), "invalid workspace cookie", map[string]interface{}{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		return "", false
	}

	if _, err := m.sessions.Get(id); err != nil {
		if !errors.Is(err, session.ErrWorkspaceNotFound) && !errors.Is(err, session.ErrWorkspaceExpired) {
			m.logger.Error(r.Context(), "failed to load workspace", map[string]interface{}{
				"error":        err.Error(),
				"workspace_id": id,
			})
		}
		return "", false
	}

	return id, true
}

func (m *WorkspaceMiddleware) setCookie(w http.ResponseWriter, id string) error {
	encoded, err := m.secureCookie.Encode(m.cookieName, id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.maxAge.Seconds()),
	})
	return nil
}

// GetWorkspaceID extracts the workspace ID from the request context.
func GetWorkspaceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(WorkspaceIDKey).(string)
	return id, ok && id != ""
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				log.Warn(r.Context(), "request completed", fields)
				return
			}
			log.Info(r.Context(), "request completed", fields)
		})
	}
}
