package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type inventoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.inventory.List())
}

func (s *Server) handleAddInventory(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	added, err := s.inventory.Add(req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, s.inventory.List())
}

func (s *Server) handleRemoveInventory(w http.ResponseWriter, r *http.Request) {
	if err := s.inventory.Remove(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
