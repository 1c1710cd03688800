// cmd/server/server.go
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/internal/wardrobe"
	"github.com/valpere/DressCodex/pkg/api"
)

const maxBodyBytes = 8 << 20

// Server exposes the extraction and duplicate detection API over HTTP.
type Server struct {
	client      *api.Client
	store       wardrobe.Store
	metrics     *monitoring.MetricsManager
	health      *monitoring.HealthManager
	logger      utils.Logger
	metricsPath string
}

// NewServer creates a server. store may be nil, which disables the event
// routes; metrics may be nil, which disables /metrics.
func NewServer(client *api.Client, store wardrobe.Store, metrics *monitoring.MetricsManager, health *monitoring.HealthManager, logger utils.Logger) *Server {
	return &Server{
		client:      client,
		store:       store,
		metrics:     metrics,
		health:      health,
		logger:      logger,
		metricsPath: "/metrics",
	}
}

// Routes builds the router with its middleware chain.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware, s.recoveryMiddleware)

	r.HandleFunc("/health", s.health.HealthHandler()).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle(s.metricsPath, s.metrics.MetricsHandler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	v1.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	v1.HandleFunc("/classify", s.handleClassify).Methods(http.MethodGet)
	v1.HandleFunc("/duplicates", s.handleDuplicates).Methods(http.MethodPost)
	v1.HandleFunc("/duplicates/verdict", s.handleVerdict).Methods(http.MethodPost)
	v1.HandleFunc("/events/{eventID}/duplicates", s.handleEventCandidate).Methods(http.MethodPost)
	v1.HandleFunc("/events/{eventID}/duplicates", s.handleEventScan).Methods(http.MethodGet)
	v1.HandleFunc("/events/{eventID}/items", s.handleEventItems).Methods(http.MethodGet)
	v1.HandleFunc("/events/{eventID}/items", s.handleAddItem).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return r
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req api.ExtractRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.fail(w, r, utils.NewError(utils.ErrCodeInvalidInput, "url is required").WithUserMessage("url is required").Build())
		return
	}

	product, err := s.client.ExtractProduct(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req api.ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		s.fail(w, r, utils.NewError(utils.ErrCodeInvalidInput, "html is required").WithUserMessage("html is required").Build())
		return
	}

	product, err := s.client.ExtractFromHTML(r.Context(), strings.TrimSpace(req.URL), req.HTML)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		s.fail(w, r, utils.NewError(utils.ErrCodeInvalidInput, "text is required").WithUserMessage("text query parameter is required").Build())
		return
	}
	writeJSON(w, http.StatusOK, api.Classify(text, r.URL.Query().Get("color")))
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	var req api.DuplicateCheckRequest
	if !s.decode(w, r, &req) {
		return
	}
	findings, err := s.client.CheckDuplicates(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, findings)
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var req api.DuplicateCheckRequest
	if !s.decode(w, r, &req) {
		return
	}
	verdicts, err := s.client.CheckDuplicate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verdicts)
}

type eventCandidateRequest struct {
	Candidate api.WardrobeItem `json:"candidate"`
}

func (s *Server) handleEventCandidate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var req eventCandidateRequest
	if !s.decode(w, r, &req) {
		return
	}

	eventID := mux.Vars(r)["eventID"]
	items, err := s.store.ItemsByEvent(r.Context(), eventID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// a stored candidate is not its own duplicate
	existing := items[:0:0]
	for _, it := range items {
		if req.Candidate.ID != "" && it.ID == req.Candidate.ID {
			continue
		}
		existing = append(existing, it)
	}

	findings, err := s.client.CheckDuplicates(r.Context(), api.DuplicateCheckRequest{
		Candidate:     req.Candidate,
		ExistingItems: existing,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, findings)
}

func (s *Server) handleEventScan(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	items, err := s.store.ItemsByEvent(r.Context(), mux.Vars(r)["eventID"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.client.DetectEvent(r.Context(), items))
}

func (s *Server) handleEventItems(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	items, err := s.store.ItemsByEvent(r.Context(), mux.Vars(r)["eventID"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var item api.WardrobeItem
	if !s.decode(w, r, &item) {
		return
	}
	item.EventID = mux.Vars(r)["eventID"]

	id, err := s.store.Insert(r.Context(), item)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item.ID = id
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store != nil {
		return true
	}
	s.writeError(w, r, http.StatusServiceUnavailable, string(utils.ErrCodeDatabaseError), "event storage is not configured")
	return false
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, string(utils.ErrCodeInvalidInput), "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch utils.CodeOf(err) {
	case utils.ErrCodeNoName:
		return http.StatusUnprocessableEntity
	case utils.ErrCodeInvalidInput, utils.ErrCodeInvalidURL, utils.ErrCodeValidation:
		return http.StatusBadRequest
	case utils.ErrCodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := loggerFrom(r.Context(), s.logger).WithField("status", status)

	var se *utils.StructuredError
	if errors.As(err, &se) {
		log = log.WithFields(se.Context)
	}
	if status >= http.StatusInternalServerError {
		log.WithField("error", err.Error()).Error("request failed")
	} else {
		log.WithField("error", err.Error()).Info("request rejected")
	}

	message := utils.GetUserFriendlyMessage(err)
	if status >= http.StatusInternalServerError && se == nil {
		message = "internal error"
	}
	s.writeError(w, r, status, string(utils.CodeOf(err)), message)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
