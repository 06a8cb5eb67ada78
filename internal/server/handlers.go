package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/ingest"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/vector"
)

// maxJSONBody caps JSON request bodies; /index/add with large batches is the biggest.
const maxJSONBody = 64 << 20

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory.
const multipartMemory = 32 << 20

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return errs.InvalidArgument("invalid request body: %v", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req models.AddRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.store.Add(r.Context(), req.Vectors, req.Metadata)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.metrics.addedVectorsTotal.Add(float64(resp.Added))
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.planner.Search(r.Context(), &req)
	s.observeSearch(req.SearchType(), resp, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	var req models.TextSearchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.planner.SearchText(r.Context(), &req)
	searchType := models.SearchTypeHybrid
	if req.Hybrid != nil && !*req.Hybrid {
		searchType = models.SearchTypeVector
	}
	s.observeSearch(searchType, resp, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	var req models.KeywordSearchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.planner.KeywordSearch(r.Context(), &req)
	s.observeSearch(models.SearchTypeKeyword, resp, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) observeSearch(searchType string, resp *models.SearchResponse, err error) {
	s.metrics.searchRequestsTotal.WithLabelValues(searchType, outcome(err)).Inc()
	if err == nil {
		s.metrics.searchCandidates.WithLabelValues(searchType).Observe(float64(resp.Candidates))
	}
}

func (s *Server) handleGetVector(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.LookupByStableID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.planner.Stats())
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		s.respondError(w, r, errs.Unavailable("embedding gateway", fmt.Errorf("not configured")))
		return
	}
	respondJSON(w, http.StatusOK, models.ModelInfo{
		Model:        s.gateway.Model(),
		Dimensions:   s.gateway.Dimensions(),
		MaxSeqLength: s.gateway.MaxSeqLength(),
	})
}

// handleEmbed returns the gateway's vectors. normalize=true re-normalizes them; omitting it
// or sending false returns them as the configured gateway produced them.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		s.respondError(w, r, errs.Unavailable("embedding gateway", fmt.Errorf("not configured")))
		return
	}
	var req models.EmbedRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := embedding.ValidateBatch(req.Texts); err != nil {
		s.respondError(w, r, err)
		return
	}
	vectors, err := s.gateway.Embed(r.Context(), req.Texts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Normalize != nil && *req.Normalize {
		for _, v := range vectors {
			vector.Normalize(v)
		}
	}
	s.metrics.embedTextsTotal.Add(float64(len(req.Texts)))
	respondJSON(w, http.StatusOK, models.EmbedResponse{
		Embeddings: vectors,
		Model:      s.gateway.Model(),
		Dimensions: s.gateway.Dimensions(),
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		s.respondError(w, r, errs.Unavailable("ingest pipeline", fmt.Errorf("not configured")))
		return
	}
	doc, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.pipeline.Extract(r.Context(), doc)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		s.respondError(w, r, errs.Unavailable("ingest pipeline", fmt.Errorf("not configured")))
		return
	}
	doc, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	tenant := r.FormValue("tenant_id")
	if tenant == "" {
		tenant = r.FormValue(models.KeyTenant)
	}
	resp, err := s.pipeline.Ingest(r.Context(), doc, tenant)
	s.metrics.ingestDocsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.metrics.addedVectorsTotal.Add(float64(resp.PassagesCount))
	s.logger.Debug("ingest", zap.String("filename", resp.Filename), zap.Int("passages", resp.PassagesCount))
	respondJSON(w, http.StatusOK, resp)
}

// readUpload reads the multipart "file" field, bounded by max_upload_mb.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (ingest.Document, error) {
	limit := int64(s.config.MaxUploadMB) << 20
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ingest.Document{}, err
		}
		return ingest.Document{}, errs.InvalidArgument("invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return ingest.Document{}, errs.InvalidArgument("file is required")
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return ingest.Document{}, errs.InvalidArgument("read upload: %v", err)
	}
	return ingest.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
