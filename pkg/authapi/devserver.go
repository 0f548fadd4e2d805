package authapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whispernotes/whisper/pkg/core"
)

// DevServer is a minimal in-memory implementation of the auth contract, for
// local development and for exercising the client against a real HTTP
// server. It is NOT a production backend: passwords are compared in plain
// text and nothing survives a restart.
type DevServer struct {
	mu        sync.Mutex
	users     map[string]devUser // keyed by email
	lastEmail string             // most recently authenticated; PATCH target
	nextID    int
}

type devUser struct {
	user     core.User
	password string
}

// NewDevServer creates an empty dev auth backend.
func NewDevServer() *DevServer {
	return &DevServer{users: make(map[string]devUser)}
}

// Handler returns the chi router serving the auth endpoints.
func (s *DevServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post(LoginPath, s.handleLogin)
	r.Post(SignupPath, s.handleSignup)
	r.Patch(ProfilePath, s.handleProfile)

	return r
}

// Register seeds an account, so tests and demos can log in without going
// through signup first.
func (s *DevServer) Register(name, email, password string) core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(name, email, password)
}

func (s *DevServer) register(name, email, password string) core.User {
	s.nextID++
	u := core.User{
		ID:        fmt.Sprintf("user-%d", s.nextID),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.users[email] = devUser{user: u, password: password}
	return u
}

func (s *DevServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.users[req.Email]
	if !ok || account.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.lastEmail = req.Email
	writeUser(w, http.StatusOK, account.user)
}

func (s *DevServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		writeMessage(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	u := s.register(req.Name, req.Email, req.Password)
	s.lastEmail = req.Email
	writeUser(w, http.StatusCreated, u)
}

// handleProfile patches the most recently authenticated account. The real
// contract would resolve the user from a session token; the dev server has
// no sessions.
func (s *DevServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	var update core.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.users[s.lastEmail]
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "not signed in")
		return
	}

	if update.Name != nil {
		account.user.Name = *update.Name
	}
	if update.Avatar != nil {
		account.user.Avatar = *update.Avatar
	}
	if update.Email != nil && *update.Email != account.user.Email {
		delete(s.users, account.user.Email)
		account.user.Email = *update.Email
		s.lastEmail = *update.Email
	}
	s.users[account.user.Email] = account
	writeUser(w, http.StatusOK, account.user)
}

func writeUser(w http.ResponseWriter, status int, u core.User) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(userEnvelope{User: u})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Message: msg})
}
