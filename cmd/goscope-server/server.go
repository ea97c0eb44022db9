package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	goScope "github.com/MrEthical07/goScope"
	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/middleware"
	"github.com/MrEthical07/goScope/session"
)

type server struct {
	engine *goScope.Engine
	logger *zap.Logger
}

// newRouter wires the HTTP boundary. metrics may be nil.
func newRouter(engine *goScope.Engine, logger *zap.Logger, metrics http.Handler) http.Handler {
	s := &server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ClientIP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Post("/authenticate", s.authenticate)
	r.Get("/token", s.token)
	r.Post("/verify", s.verify)
	r.Get("/public-key", s.publicKey)

	r.With(middleware.RequireSession(engine)).Get("/session", s.whoami)
	r.With(middleware.RequireScope(engine, acl.Users)).Get("/v1/users/me", s.claims)

	return r
}

type authenticateRequest struct {
	Identity string `json:"identity"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (s *server) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	token, err := s.engine.Login(r.Context(), req.Identity)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"authToken": token})
	case errors.Is(err, session.ErrIdentityRequired), errors.Is(err, session.ErrInvalidIdentity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "login unavailable")
	}
}

func (s *server) token(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.engine.Resolve(r.Context(), r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var scopes []acl.Scope
	if raw := r.URL.Query().Get("scopes"); raw != "" {
		parsed, err := acl.ParseList(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		scopes = parsed
	}

	token, err := s.engine.IssueToken(r.Context(), identity, scopes)
	if err != nil {
		status := issueStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("token issue failed", zap.String("identity", identity), zap.Error(err))
		}
		writeError(w, status, http.StatusText(status))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func issueStatus(err error) int {
	switch {
	case errors.Is(err, goScope.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, goScope.ErrIssueRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, jwt.ErrIdentityRequired),
		errors.Is(err, jwt.ErrInvalidIdentity),
		errors.Is(err, goScope.ErrAdminReserved),
		errors.Is(err, acl.ErrEmptyScopes),
		errors.Is(err, acl.ErrAdminExclusive),
		errors.Is(err, acl.ErrUnknownScope),
		errors.Is(err, acl.ErrDuplicateScope):
		return http.StatusBadRequest
	case errors.Is(err, goScope.ErrRateLimiterUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.engine.Verify(req.Token)})
}

func (s *server) publicKey(w http.ResponseWriter, _ *http.Request) {
	pemBytes, err := s.engine.PublicKeyPEM()
	if err != nil {
		s.logger.Error("public key export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.Write(pemBytes)
}

func (s *server) whoami(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"identity": identity})
}

func (s *server) claims(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"sub": claims.Subject,
		"jti": claims.ID,
		"exp": claims.ExpiresAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
