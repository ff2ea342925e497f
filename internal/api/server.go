package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"borderhopper/internal/config"
	"borderhopper/internal/db"
	"borderhopper/internal/engine"
	"borderhopper/internal/graph"
	"borderhopper/internal/ingest"
	"borderhopper/internal/logger"
)

// Ingester loads datasets into storage.
type Ingester interface {
	Run(ctx context.Context, dir string, force bool) ([]ingest.Result, error)
}

// History lists past ingestion runs.
type History interface {
	GetIngestRuns(ctx context.Context, limit int) ([]db.IngestRecord, error)
}

// Server is the HTTP API server that connects the game service, the
// ingestion loader and the database.
type Server struct {
	cfg      *config.Config
	svc      *engine.Service
	ingester Ingester
	history  History
	validate *validator.Validate
	limiter  *clientLimiter

	// Serializes PUT /api/initDb.
	initMu sync.Mutex

	mu    sync.RWMutex
	ready bool
}

// NewServer creates a Server. ingester and history may be nil; the routes
// depending on them then answer 503.
func NewServer(cfg *config.Config, svc *engine.Service, ingester Ingester, history History) *Server {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return &Server{
		cfg:      cfg,
		svc:      svc,
		ingester: ingester,
		history:  history,
		validate: v,
		limiter:  newClientLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// SetReady is called once the first graph build finished.
func (s *Server) SetReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the HTTP handler with all API routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/randomConnected", s.handleRandomConnected)
	mux.HandleFunc("GET /api/nextUnit", s.handleNextUnit)
	mux.HandleFunc("GET /api/distanceRemaining", s.handleDistanceRemaining)
	mux.HandleFunc("GET /api/getConnected", s.handleGetConnected)
	mux.HandleFunc("GET /api/path", s.handlePath)
	mux.HandleFunc("GET /api/geometry/{unitName}", s.handleGeometry)
	mux.HandleFunc("GET /api/geometries", s.handleGeometries)
	mux.HandleFunc("GET /api/suggestUnits", s.handleSuggestUnits)
	mux.HandleFunc("PUT /api/initDb", s.handleInitDB)
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = mux
	h = corsMiddleware(s.cfg.CORSOrigin, h)
	h = s.limiter.middleware(h)
	h = loggingMiddleware(h)
	h = requestIDMiddleware(h)
	h = recoveryMiddleware(h)
	return h
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps engine and graph errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case graph.IsUnknownUnit(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, graph.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrTypeNotLoaded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		logger.Error("API", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Request decoding ---

type typeQuery struct {
	Type string `query:"type" validate:"required"`
}

type gameQuery struct {
	Type    string   `query:"type" validate:"required"`
	Start   string   `query:"start" validate:"required"`
	End     string   `query:"end" validate:"required"`
	Guessed []string `query:"unitsGuessed"`
}

type suggestQuery struct {
	Type         string `query:"type" validate:"required"`
	SearchString string `query:"searchString" validate:"max=200"`
	TopN         int    `query:"topN" validate:"gte=0"`
}

// checkQuery validates v and writes a 400 naming the first bad parameter.
func (s *Server) checkQuery(w http.ResponseWriter, v interface{}) bool {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			writeError(w, http.StatusBadRequest, "missing parameter: "+fe.Field())
		} else {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid parameter: %s (%s)", fe.Field(), fe.Tag()))
		}
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return false
}

func (s *Server) parseType(w http.ResponseWriter, raw string) (graph.UnitType, bool) {
	t, err := graph.ParseUnitType(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return t, true
}

// parseGuessed accepts repeated parameters and comma-separated lists.
func parseGuessed(values []string) []string {
	var out []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func (s *Server) decodeGame(w http.ResponseWriter, r *http.Request) (graph.UnitType, gameQuery, bool) {
	q := r.URL.Query()
	req := gameQuery{
		Type:    q.Get("type"),
		Start:   strings.TrimSpace(q.Get("start")),
		End:     strings.TrimSpace(q.Get("end")),
		Guessed: parseGuessed(q["unitsGuessed"]),
	}
	if !s.checkQuery(w, &req) {
		return "", req, false
	}
	t, ok := s.parseType(w, req.Type)
	return t, req, ok
}

func (s *Server) decodeType(w http.ResponseWriter, r *http.Request) (graph.UnitType, bool) {
	req := typeQuery{Type: r.URL.Query().Get("type")}
	if !s.checkQuery(w, &req) {
		return "", false
	}
	return s.parseType(w, req.Type)
}

// --- Handlers ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{
		"ready": s.isReady(),
		"types": s.svc.Status(),
	}
	if s.history != nil {
		if runs, err := s.history.GetIngestRuns(r.Context(), 10); err == nil {
			result["ingest_runs"] = runs
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleRandomConnected(w http.ResponseWriter, r *http.Request) {
	t, ok := s.decodeType(w, r)
	if !ok {
		return
	}
	pair, err := s.svc.RandomConnected(t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, pair)
}

func (s *Server) handleNextUnit(w http.ResponseWriter, r *http.Request) {
	t, req, ok := s.decodeGame(w, r)
	if !ok {
		return
	}
	hint, found, err := s.svc.NextUnit(t, req.Start, req.End, graph.NewGuessedSet(req.Guessed...))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no hint available")
		return
	}
	writeText(w, hint)
}

func (s *Server) handleDistanceRemaining(w http.ResponseWriter, r *http.Request) {
	t, req, ok := s.decodeGame(w, r)
	if !ok {
		return
	}
	d, err := s.svc.DistanceRemaining(t, req.Start, req.End, graph.NewGuessedSet(req.Guessed...))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, d)
}

func (s *Server) handleGetConnected(w http.ResponseWriter, r *http.Request) {
	t, req, ok := s.decodeGame(w, r)
	if !ok {
		return
	}
	units, err := s.svc.Connected(t, req.Start, req.End, graph.NewGuessedSet(req.Guessed...))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, units)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	t, req, ok := s.decodeGame(w, r)
	if !ok {
		return
	}
	path, err := s.svc.Path(t, req.Start, req.End, graph.NewGuessedSet(req.Guessed...))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if path == nil {
		path = []string{}
	}
	writeJSON(w, path)
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	t, ok := s.decodeType(w, r)
	if !ok {
		return
	}
	name := r.PathValue("unitName")
	geojson, err := s.svc.Geometry(r.Context(), t, name)
	if graph.IsUnknownUnit(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write([]byte(geojson))
}

func (s *Server) handleGeometries(w http.ResponseWriter, r *http.Request) {
	t, ok := s.decodeType(w, r)
	if !ok {
		return
	}
	all, err := s.svc.Geometries(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, all)
}

func (s *Server) handleSuggestUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := suggestQuery{
		Type:         q.Get("type"),
		SearchString: q.Get("searchString"),
		TopN:         s.cfg.SuggestDefaultTopN,
	}
	if raw := q.Get("topN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parameter: topN")
			return
		}
		req.TopN = n
	}
	if !s.checkQuery(w, &req) {
		return
	}
	t, ok := s.parseType(w, req.Type)
	if !ok {
		return
	}
	if req.TopN > s.cfg.SuggestMaxTopN {
		req.TopN = s.cfg.SuggestMaxTopN
	}

	matches, err := s.svc.Suggest(t, req.SearchString, req.TopN)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m.Label
	}
	writeJSON(w, labels)
}

func (s *Server) handleInitDB(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion is not configured")
		return
	}
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parameter: force")
			return
		}
		force = v
	}
	if !s.initMu.TryLock() {
		writeError(w, http.StatusConflict, "initialization already running")
		return
	}
	defer s.initMu.Unlock()

	results, err := s.ingester.Run(r.Context(), s.cfg.DataDir, force)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.svc.Rebuild(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	s.SetReady()
	writeJSON(w, map[string]interface{}{"ingested": results, "types": s.svc.Status()})
}
