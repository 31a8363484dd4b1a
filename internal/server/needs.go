package server

import (
	"net/http"
	"strings"
	"time"

	"cupboard/internal/funding"
	"cupboard/internal/utils"
	"cupboard/pkg/types"

	"github.com/alexedwards/flow"
)

type needRequest struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Cost            *float64   `json:"cost"`
	Quantity        *int       `json:"quantity"`
	Category        *string    `json:"category"`
	Priority        *string    `json:"priority"`
	IsTimeSensitive *bool      `json:"is_time_sensitive"`
	Deadline        *time.Time `json:"deadline"`
	Address         *string    `json:"address"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
}

// needResponse is a need plus its derived funding progress. The need's
// own fields stay snake_case, the progress fields camelCase, matching
// what the client already consumes.
type needResponse struct {
	*types.Need
	funding.Progress
}

func (s *Service) handleListNeeds(w http.ResponseWriter, r *http.Request) {
	needs, err := s.needs.Needs(r.Context())
	if err != nil {
		s.internalServerError(w, err, "failed to fetch needs")
		return
	}

	s.respondNeedList(w, r, needs)
}

// handleListNeedsByPriority serves the same ranking the default listing
// uses; it exists as its own route for compatibility.
func (s *Service) handleListNeedsByPriority(w http.ResponseWriter, r *http.Request) {
	needs, err := s.needs.Needs(r.Context())
	if err != nil {
		s.internalServerError(w, err, "failed to fetch needs by priority")
		return
	}

	s.respondNeedList(w, r, needs)
}

type searchNeedsParams struct {
	Query string `form:"q"`
}

func (s *Service) handleSearchNeeds(w http.ResponseWriter, r *http.Request) {
	var params searchNeedsParams
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	if strings.TrimSpace(params.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	needs, err := s.needs.SearchNeeds(r.Context(), params.Query)
	if err != nil {
		s.internalServerError(w, err, "failed to search needs")
		return
	}

	s.respondNeedList(w, r, needs)
}

func (s *Service) handleNeedsByCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := types.ParseCategory(flow.Param(r.Context(), "category"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "Invalid category")
		return
	}

	needs, err := s.needs.NeedsByCategory(r.Context(), category)
	if err != nil {
		s.internalServerError(w, err, "failed to fetch needs by category")
		return
	}

	s.respondNeedList(w, r, needs)
}

func (s *Service) handleGetNeed(w http.ResponseWriter, r *http.Request) {
	need, err := s.needs.Need(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondStoreError(w, err, "failed to fetch need")
		return
	}

	progress, err := s.progress.ForNeed(r.Context(), need)
	if err != nil {
		s.internalServerError(w, err, "failed to compute need progress")
		return
	}

	s.respondJSON(w, http.StatusOK, needResponse{Need: need, Progress: progress})
}

func (s *Service) handleCreateNeed(w http.ResponseWriter, r *http.Request) {
	var req needRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Cost == nil || req.Quantity == nil {
		s.respondError(w, http.StatusBadRequest, "Name, cost, and quantity are required")
		return
	}

	need := &types.Need{
		Name:        strings.TrimSpace(*req.Name),
		Description: utils.PtrString(req.Description),
		Category:    types.CategoryOther,
		Priority:    types.PriorityMedium,
		Deadline:    req.Deadline,
		Address:     utils.PtrString(req.Address),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}

	if req.IsTimeSensitive != nil {
		need.IsTimeSensitive = *req.IsTimeSensitive
	}

	if msg, ok := applyNeedNumbers(need, req.Cost, req.Quantity); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if msg, ok := applyNeedEnums(need, req.Category, req.Priority); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.needs.CreateNeed(r.Context(), need); err != nil {
		s.internalServerError(w, err, "failed to create need")
		return
	}

	s.respondJSON(w, http.StatusCreated, need)
}

func (s *Service) handleUpdateNeed(w http.ResponseWriter, r *http.Request) {
	needID := flow.Param(r.Context(), "id")

	var req needRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	need, err := s.needs.Need(r.Context(), needID)
	if err != nil {
		s.respondStoreError(w, err, "failed to fetch need for update")
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			s.respondError(w, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		need.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		need.Description = *req.Description
	}
	if req.IsTimeSensitive != nil {
		need.IsTimeSensitive = *req.IsTimeSensitive
	}
	if req.Deadline != nil {
		need.Deadline = req.Deadline
	}
	if req.Address != nil {
		need.Address = *req.Address
	}
	if req.Latitude != nil {
		need.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		need.Longitude = req.Longitude
	}

	cost, quantity := utils.Float64Ptr(need.Cost), utils.IntPtr(need.Quantity)
	if req.Cost != nil {
		cost = req.Cost
	}
	if req.Quantity != nil {
		quantity = req.Quantity
	}
	if msg, ok := applyNeedNumbers(need, cost, quantity); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if msg, ok := applyNeedEnums(need, req.Category, req.Priority); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.needs.UpdateNeed(r.Context(), needID, need); err != nil {
		s.respondStoreError(w, err, "failed to update need")
		return
	}

	s.respondJSON(w, http.StatusOK, need)
}

func (s *Service) handleDeleteNeed(w http.ResponseWriter, r *http.Request) {
	if err := s.needs.DeleteNeed(r.Context(), flow.Param(r.Context(), "id")); err != nil {
		s.respondStoreError(w, err, "failed to delete need")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Need deleted successfully"})
}

func applyNeedNumbers(need *types.Need, cost *float64, quantity *int) (string, bool) {
	if *cost < 0 {
		return "Cost must be non-negative", false
	}
	if *quantity < 0 {
		return "Quantity must be non-negative", false
	}

	need.Cost = *cost
	need.Quantity = *quantity
	return "", true
}

func applyNeedEnums(need *types.Need, category, priority *string) (string, bool) {
	if category != nil {
		c, ok := types.ParseCategory(*category)
		if !ok {
			return "Invalid category", false
		}
		need.Category = c
	}

	if priority != nil {
		p, ok := types.ParsePriority(*priority)
		if !ok {
			return "Invalid priority", false
		}
		need.Priority = p
	}

	return "", true
}

func (s *Service) respondNeedList(w http.ResponseWriter, r *http.Request, needs []*types.Need) {
	out := make([]needResponse, 0, len(needs))
	for _, need := range needs {
		progress, err := s.progress.ForNeed(r.Context(), need)
		if err != nil {
			s.internalServerError(w, err, "failed to compute need progress")
			return
		}
		out = append(out, needResponse{Need: need, Progress: progress})
	}

	s.respondJSON(w, http.StatusOK, out)
}
