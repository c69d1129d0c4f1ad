// Package fakestore is an in-process pet-store with the eventual consistency
// of the public service: writes take effect immediately, but fetches by id
// keep returning the previous state for a configurable number of reads.
package fakestore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/petstore-client/internal/auth"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

const (
	rateLimit     = 5000
	sessionTTL    = time.Hour
	maxUploadSize = 10 << 20
)

type fault struct {
	method string
	prefix string
	status int
	times  int
}

// Server is a running fake store.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	lag      int
	apiKey   string
	nextID   int64
	tables   map[petstore.Kind]*table
	faults   []*fault
	requests map[string]int
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLag sets how many fetches of a key still observe its previous state
// after each write.
func WithLag(reads int) Option {
	return func(s *Server) {
		s.lag = reads
	}
}

// WithAPIKey makes the store reject requests without this api_key header.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithStartID sets the first id assigned to created resources.
func WithStartID(id int64) Option {
	return func(s *Server) {
		s.nextID = id
	}
}

// New starts a fake store. Call Close when done.
func New(opts ...Option) *Server {
	s := NewUnstarted(opts...)
	s.Start()

	return s
}

// NewUnstarted returns a fake store that is not yet listening.
func NewUnstarted(opts ...Option) *Server {
	s := &Server{
		nextID:   1,
		requests: map[string]int{},
		now:      time.Now,
		tables: map[petstore.Kind]*table{
			petstore.KindPet:   newTable(),
			petstore.KindOrder: newTable(),
			petstore.KindUser:  newTable(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewUnstartedServer(s.routes())

	return s
}

// BaseURL returns the API root clients should use.
func (s *Server) BaseURL() string {
	return s.URL + "/v2"
}

// SetLag changes the visibility lag of subsequent writes.
func (s *Server) SetLag(reads int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lag = reads
}

// FailNext makes the next times requests whose method matches and whose path
// (below /v2) starts with prefix answer status.
func (s *Server) FailNext(method, prefix string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults = append(s.faults, &fault{method: method, prefix: prefix, status: status, times: times})
}

// Count returns how many requests hit method and exact path (below /v2).
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests[method+" "+path]
}

// SeedPet stores a pet that is visible at once.
func (s *Server) SeedPet(pet petstore.Pet) petstore.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pet.ID == 0 {
		pet.ID = s.allocateID()
	}

	if err := s.put(petstore.KindPet, strconv.FormatInt(pet.ID, 10), pet, 0); err != nil {
		panic(err)
	}

	return pet
}

// SeedUser stores a user that is visible at once.
func (s *Server) SeedUser(user petstore.User) petstore.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == 0 {
		user.ID = s.allocateID()
	}

	if err := s.put(petstore.KindUser, user.Username, user, 0); err != nil {
		panic(err)
	}

	return user
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v2/pet", s.createPet)
	mux.HandleFunc("PUT /v2/pet", s.updatePet)
	mux.HandleFunc("GET /v2/pet/findByStatus", s.findPetsByStatus)
	mux.HandleFunc("GET /v2/pet/{petId}", s.getPet)
	mux.HandleFunc("POST /v2/pet/{petId}", s.updatePetWithForm)
	mux.HandleFunc("DELETE /v2/pet/{petId}", s.deletePet)
	mux.HandleFunc("POST /v2/pet/{petId}/uploadImage", s.uploadImage)

	mux.HandleFunc("GET /v2/store/inventory", s.inventory)
	mux.HandleFunc("POST /v2/store/order", s.placeOrder)
	mux.HandleFunc("GET /v2/store/order/{orderId}", s.getOrder)
	mux.HandleFunc("PUT /v2/store/order/{orderId}", s.updateOrder)
	mux.HandleFunc("DELETE /v2/store/order/{orderId}", s.deleteOrder)

	mux.HandleFunc("POST /v2/user", s.createUser)
	mux.HandleFunc("POST /v2/user/createWithArray", s.createUsers)
	mux.HandleFunc("POST /v2/user/createWithList", s.createUsers)
	mux.HandleFunc("GET /v2/user/login", s.login)
	mux.HandleFunc("GET /v2/user/logout", s.logout)
	mux.HandleFunc("GET /v2/user/{username}", s.getUser)
	mux.HandleFunc("PUT /v2/user/{username}", s.updateUser)
	mux.HandleFunc("DELETE /v2/user/{username}", s.deleteUser)

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path := strings.TrimPrefix(request.URL.Path, "/v2")

		s.mu.Lock()
		s.requests[request.Method+" "+path]++
		status := s.takeFault(request.Method, path)
		apiKey := s.apiKey
		s.mu.Unlock()

		if apiKey != "" && request.Header.Get(auth.APIKeyHeader) != apiKey {
			writeMessage(writer, http.StatusUnauthorized, "error", "Invalid API key")
			return
		}

		if status != 0 {
			writeMessage(writer, status, "error", http.StatusText(status))
			return
		}

		mux.ServeHTTP(writer, request)
	})
}

// takeFault must be called with s.mu held.
func (s *Server) takeFault(method, path string) int {
	for i, f := range s.faults {
		if f.method != method || !strings.HasPrefix(path, f.prefix) {
			continue
		}

		f.times--
		if f.times <= 0 {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
		}

		return f.status
	}

	return 0
}

// allocateID must be called with s.mu held.
func (s *Server) allocateID() int64 {
	id := s.nextID
	s.nextID++

	return id
}

// put must be called with s.mu held. On an encoding error the table is left
// unchanged.
func (s *Server) put(kind petstore.Kind, key string, v interface{}, lag int) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", kind, key, err)
	}

	s.tables[kind].write(key, body, lag)

	return nil
}

// remove must be called with s.mu held. It reports whether key existed.
func (s *Server) remove(kind petstore.Kind, key string) bool {
	if s.tables[kind].latest(key) == nil {
		return false
	}

	s.tables[kind].write(key, nil, s.lag)

	return true
}

// fetch reads key as a client would and decodes it into v.
func (s *Server) fetch(kind petstore.Kind, key string, v interface{}) bool {
	s.mu.Lock()
	body := s.tables[kind].read(key)
	s.mu.Unlock()

	if body == nil {
		return false
	}

	return json.Unmarshal(body, v) == nil
}

// current decodes the authoritative state; must be called with s.mu held.
func (s *Server) current(kind petstore.Kind, key string, v interface{}) bool {
	body := s.tables[kind].latest(key)
	if body == nil {
		return false
	}

	return json.Unmarshal(body, v) == nil
}

func writeJSON(writer http.ResponseWriter, status int, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(v)
}

func writeStoreError(writer http.ResponseWriter, err error) {
	writeMessage(writer, http.StatusInternalServerError, "unknown", err.Error())
}

func writeMessage(writer http.ResponseWriter, status int, kind, message string) {
	code := status
	if status == http.StatusNotFound {
		code = 1
	}

	writeJSON(writer, status, petstore.APIResponse{Code: code, Type: kind, Message: message})
}

func decodeBody(request *http.Request, v interface{}) error {
	data, err := io.ReadAll(request.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}
