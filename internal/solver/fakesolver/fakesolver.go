// Package fakesolver serves canned answers for the calculate endpoint so the
// app can run and be tested without a real recognition backend.
package fakesolver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v3"

	"github.com/example/mathnote/internal/solver"
)

// Answer is one canned result.
type Answer struct {
	Expr   string `yaml:"expr"`
	Result string `yaml:"result"`
	Assign bool   `yaml:"assign"`
}

// Fixture lists the responses the server replays in order.
type Fixture struct {
	// Responses are returned round-robin, one per request.
	Responses [][]Answer `yaml:"responses"`
	// EchoVars appends one non-assigning result per variable the client
	// sent.
	EchoVars bool `yaml:"echo_vars"`
	// FailStatus, when non-zero, makes every request fail with that code.
	FailStatus int `yaml:"fail_status"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("fakesolver: parse fixture: %w", err)
	}
	return fx, nil
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("fakesolver: read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Server answers calculate requests from a Fixture.
type Server struct {
	fx     Fixture
	logger *slog.Logger
	router chi.Router

	mu       sync.Mutex
	next     int
	requests []solver.Request
}

// New returns a Server for fx. A nil logger discards output.
func New(fx Fixture, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{fx: fx, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/calculate", s.handleCalculate)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Requests returns the requests received so far.
func (s *Server) Requests() []solver.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]solver.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	var req solver.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	mediaType, _, err := solver.DecodeDataURL(req.Image)
	if err != nil || mediaType != "image/png" {
		http.Error(w, "image must be a PNG data URL", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	var answers []Answer
	if n := len(s.fx.Responses); n > 0 {
		answers = s.fx.Responses[s.next%n]
		s.next++
	}
	s.mu.Unlock()

	if s.fx.FailStatus != 0 {
		s.logger.Info("failing calculate", "request_id", reqID, "status", s.fx.FailStatus)
		http.Error(w, http.StatusText(s.fx.FailStatus), s.fx.FailStatus)
		return
	}

	resp := solver.Response{Message: "Image processed", Type: "success", Data: []solver.Result{}}
	for _, a := range answers {
		resp.Data = append(resp.Data, solver.Result{
			Expr:   solver.Text(a.Expr),
			Result: solver.Text(a.Result),
			Assign: a.Assign,
		})
	}
	if s.fx.EchoVars {
		keys := make([]string, 0, len(req.Vars))
		for k := range req.Vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			resp.Data = append(resp.Data, solver.Result{Expr: solver.Text(k), Result: solver.Text(req.Vars[k])})
		}
	}

	s.logger.Info("calculate", "request_id", reqID, "vars", len(req.Vars), "results", len(resp.Data))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
