package backend

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/joshgrift/piratesquest/pkg/auth"
	"github.com/joshgrift/piratesquest/pkg/backend/store"
	"github.com/joshgrift/piratesquest/pkg/log"
)

const tokenTTL = 24 * time.Hour

// Server is the persistence backend shared by all game servers. It stores
// snapshots as opaque JSON and issues login tokens. Every route requires the
// shared server secret.
type Server struct {
	server *http.Server
	store  store.Store
	secret []byte
}

type NewServerOptions struct {
	Port   int
	Store  store.Store
	Secret []byte
}

func NewServer(opts NewServerOptions) *Server {
	s := &Server{
		store:  opts.Store,
		secret: opts.Secret,
	}

	router := mux.NewRouter()
	router.Use(s.authMiddleware)
	router.HandleFunc("/api/token", s.handleIssueToken).Methods(http.MethodPost)
	router.HandleFunc("/api/servers/{serverID}/players/{accountID}", s.handleLoadPlayer).Methods(http.MethodGet)
	router.HandleFunc("/api/servers/{serverID}/players/{accountID}", s.handleSavePlayer).Methods(http.MethodPut)
	router.HandleFunc("/api/servers/{serverID}/presence", s.handlePresence).Methods(http.MethodPost)
	router.HandleFunc("/api/servers/{serverID}/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return s
}

// Start starts the backend server.
func (s *Server) Start() {
	log.Info("Backend server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("Backend server closed")
			return
		}
		log.Error("Backend server error: %v", err)
	}
}

// Stop stops the backend server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		secret, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type issueTokenRequest struct {
	AccountID string `json:"accountID"`
}

type issueTokenResponse struct {
	AccountID string `json:"accountID"`
	Token     string `json:"token"`
}

// handleIssueToken signs a login token. A request without an account id gets
// a fresh one, which is how new accounts come to exist.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	request := issueTokenRequest{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &request); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	accountID := request.AccountID
	if accountID == "" {
		accountID = uuid.NewString()
	}

	token, err := auth.IssueToken(s.secret, accountID, tokenTTL)
	if err != nil {
		log.Error("Failed to issue token: %v", err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, issueTokenResponse{
		AccountID: accountID,
		Token:     token,
	})
}

func (s *Server) handleLoadPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	snapshot, err := s.store.LoadPlayer(r.Context(), vars["serverID"], vars["accountID"])
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to load player: %v", err)
		http.Error(w, "Failed to load player", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(snapshot)
}

func (s *Server) handleSavePlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := s.store.SavePlayer(r.Context(), vars["serverID"], vars["accountID"], body); err != nil {
		log.Error("Failed to save player: %v", err)
		http.Error(w, "Failed to save player", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type presenceRequest struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	request := presenceRequest{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	if err := s.store.SetPresence(r.Context(), vars["serverID"], request.Username, request.IsOnline); err != nil {
		log.Error("Failed to update presence: %v", err)
		http.Error(w, "Failed to update presence", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.Heartbeat(r.Context(), vars["serverID"]); err != nil {
		log.Error("Failed to record heartbeat: %v", err)
		http.Error(w, "Failed to record heartbeat", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response: %v", err)
	}
}
