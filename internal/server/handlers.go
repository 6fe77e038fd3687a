package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/notlelouch/chaincheck/internal/analysis"
	"github.com/notlelouch/chaincheck/internal/blog"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/rs/zerolog/log"
)

// envelope is the response shape of the /api endpoints
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg, Timestamp: timestamp()})
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Timestamp: timestamp()})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "ChainCheck API Server Running",
		"status":      "healthy",
		"timestamp":   timestamp(),
		"environment": s.cfg.Environment,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "timestamp": timestamp()})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found: "+r.Method+" "+r.URL.Path)
}

// pathAddress reads and normalizes the {address} route variable.
func pathAddress(r *http.Request) (string, error) {
	addr := analysis.NormalizeAddress(mux.Vars(r)["address"])
	return addr, analysis.ValidateAddress(addr)
}

type analyzeRequest struct {
	ContractAddress string `json:"contractAddress"`
}

func (s *Server) analyzeToken(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	addr := analysis.NormalizeAddress(req.ContractAddress)
	if addr == "" {
		writeError(w, http.StatusBadRequest, "Contract address is required")
		return
	}
	if err := analysis.ValidateAddress(addr); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.Analyze(r.Context(), addr))
}

// analyzeBare returns the analysis without the envelope.
func (s *Server) analyzeBare(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":    "Invalid contract address",
			"message":  "Contract address must be provided and valid",
			"received": addr,
		})
		return
	}
	writeJSON(w, http.StatusOK, s.analyzer.Analyze(r.Context(), addr))
}

func (s *Server) contractBehavior(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.ContractBehavior(r.Context(), addr))
}

func (s *Server) liquidityHealth(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.LiquidityHealth(r.Context(), addr))
}

func (s *Server) holderDistribution(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.HolderDistribution(r.Context(), addr))
}

func (s *Server) communitySignals(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.CommunitySignals(r.Context(), addr))
}

func (s *Server) tokenLiquidity(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract address")
		return
	}
	writeData(w, s.analyzer.Liquidity(r.Context(), addr))
}

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blogs.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list blogs")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching blogs"})
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	var in models.NewBlog
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Error saving blog"})
		return
	}
	post, err := blog.Prepare(in, s.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	post, err = s.blogs.Create(r.Context(), post)
	switch {
	case errors.Is(err, blog.ErrDuplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"message": err.Error()})
	case err != nil:
		log.Error().Err(err).Msg("create blog")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error saving blog"})
	default:
		writeJSON(w, http.StatusCreated, post)
	}
}
