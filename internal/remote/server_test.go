package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/device-registrar/internal/device"
	"github.com/nerrad567/device-registrar/internal/infrastructure/database"
	_ "github.com/nerrad567/device-registrar/migrations"
)

// testRegistry is an HTTP registry backed by a SQLite repository.
type testRegistry struct {
	repo   *device.SQLiteRepository
	secret string

	mu       sync.Mutex
	requests []string
	tokens   []*jwt.RegisteredClaims
}

// newTestRegistry starts a registry server. An empty secret disables auth.
func newTestRegistry(t *testing.T, secret string) (*testRegistry, *httptest.Server) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "registry.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open registry database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate registry database: %v", err)
	}

	reg := &testRegistry{
		repo:   device.NewSQLiteRepository(db.DB),
		secret: secret,
	}

	srv := httptest.NewServer(reg.router())
	t.Cleanup(srv.Close)

	return reg, srv
}

// recorded returns the "METHOD path" lines seen so far.
func (reg *testRegistry) recorded() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return append([]string(nil), reg.requests...)
}

// claims returns the verified token claims seen so far.
func (reg *testRegistry) claims() []*jwt.RegisteredClaims {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return append([]*jwt.RegisteredClaims(nil), reg.tokens...)
}

func (reg *testRegistry) router() http.Handler {
	r := chi.NewRouter()
	r.Use(reg.record)
	if reg.secret != "" {
		r.Use(reg.authenticate)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Put("/devices/properties", reg.putProperties)
		r.Post("/devices", reg.addDevice)
		r.Get("/devices/import", reg.importDevice)
		r.Delete("/servers", reg.deleteServer)
		r.Post("/servers/unexport", reg.unexportServer)
	})

	return r
}

func (reg *testRegistry) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg.mu.Lock()
		reg.requests = append(reg.requests, r.Method+" "+r.URL.Path)
		reg.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (reg *testRegistry) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeTestError(w, http.StatusUnauthorized, "unauthorised", "missing bearer token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
			return []byte(reg.secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(TokenSubject))
		if err != nil {
			writeTestError(w, http.StatusUnauthorized, "unauthorised", "invalid token")
			return
		}

		reg.mu.Lock()
		reg.tokens = append(reg.tokens, claims)
		reg.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (reg *testRegistry) putProperties(w http.ResponseWriter, r *http.Request) {
	var props device.Properties
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		writeTestError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	reg.respond(w, reg.repo.PutDeviceProperties(r.Context(), r.URL.Query().Get("device"), props), http.StatusNoContent)
}

func (reg *testRegistry) addDevice(w http.ResponseWriter, r *http.Request) {
	var desc device.Descriptor
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		writeTestError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	reg.respond(w, reg.repo.AddDevice(r.Context(), desc), http.StatusCreated)
}

func (reg *testRegistry) importDevice(w http.ResponseWriter, r *http.Request) {
	info, err := reg.repo.ImportDevice(r.Context(), r.URL.Query().Get("device"))
	if err != nil {
		reg.respond(w, err, 0)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info) //nolint:errcheck // test server
}

func (reg *testRegistry) deleteServer(w http.ResponseWriter, r *http.Request) {
	reg.respond(w, reg.repo.DeleteServer(r.Context(), r.URL.Query().Get("server")), http.StatusNoContent)
}

func (reg *testRegistry) unexportServer(w http.ResponseWriter, r *http.Request) {
	reg.respond(w, reg.repo.UnexportServer(r.Context(), r.URL.Query().Get("server")), http.StatusNoContent)
}

// respond maps repository errors onto the registry's status codes.
func (reg *testRegistry) respond(w http.ResponseWriter, err error, okStatus int) {
	switch {
	case err == nil:
		w.WriteHeader(okStatus)
	case errors.Is(err, device.ErrDeviceNotFound), errors.Is(err, device.ErrServerNotFound):
		writeTestError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, device.ErrDeviceExists):
		writeTestError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, device.ErrInvalidDevice):
		writeTestError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		writeTestError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeTestError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test server
	json.NewEncoder(w).Encode(apiError{Status: status, Code: code, Message: message})
}
