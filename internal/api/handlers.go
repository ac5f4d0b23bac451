// File path: internal/api/handlers.go
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/recommend"
	"github.com/nicodishanthj/shopsense/internal/sqlite"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}
	unlock := s.locks.lock(req.UserID)
	defer unlock()
	products, err := s.recommender.Recommend(r.Context(), req.UserID, req.Query)
	if err != nil {
		if errors.Is(err, recommend.ErrGeneration) {
			writeError(w, http.StatusBadGateway, "query rewriting unavailable")
			return
		}
		common.Logger().Error("api: recommendation run failed", "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{
		UserID:   req.UserID,
		Query:    req.Query,
		Products: products,
	})
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id and product_id required")
		return
	}
	if err := s.store.InsertInteraction(r.Context(), req.UserID, req.ProductID, req.Type); err != nil {
		common.Logger().Warn("api: interaction logging failed", "user", req.UserID, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "products required")
		return
	}
	rows := make([]sqlite.Product, 0, len(req.Products))
	for _, p := range req.Products {
		if p.ProductID <= 0 || strings.TrimSpace(p.Title) == "" {
			writeError(w, http.StatusBadRequest, "product_id and title required on every product")
			return
		}
		rows = append(rows, sqlite.Product{
			ProductID:     p.ProductID,
			Title:         p.Title,
			Description:   p.Description,
			Highlights:    p.Highlights,
			Category1:     p.Category1,
			Category2:     p.Category2,
			Category3:     p.Category3,
			MRP:           p.MRP,
			ProductRating: p.ProductRating,
			SellerName:    p.SellerName,
			SellerRating:  p.SellerRating,
			ImageLinks:    p.ImageLinks,
		})
	}
	if err := s.store.UpsertProducts(r.Context(), rows); err != nil {
		common.Logger().Error("api: product ingest failed", "count", len(rows), "error", err)
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}
	common.Logger().Info("api: products ingested", "count", len(rows))
	writeJSON(w, http.StatusOK, ingestResponse{Ingested: len(rows)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	id, err := s.store.CreateUser(r.Context(), req.Username, req.Email, digestPassword(req.Password))
	if err != nil {
		writeError(w, http.StatusConflict, "username or email already exists")
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{UserID: id, Username: strings.TrimSpace(req.Username)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.UserByCredentials(r.Context(), strings.TrimSpace(req.Username), digestPassword(req.Password))
	if err != nil {
		common.Logger().Error("api: login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: user.UserID, Username: user.Username})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, common.LogEntries())
}

func digestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Warn("api: response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
