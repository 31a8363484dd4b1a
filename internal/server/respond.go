package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"cupboard/pkg/types"
)

func (s *Service) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Service) internalServerError(w http.ResponseWriter, err error, msg string) {
	s.logger.WithError(err).Error(msg)
	s.respondError(w, http.StatusInternalServerError, "Something went wrong")
}

// respondStoreError maps sentinel errors to stable client messages.
// Anything unrecognized is logged and reported generically so storage
// detail never reaches the client.
func (s *Service) respondStoreError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, types.ErrNeedNotFound):
		s.respondError(w, http.StatusNotFound, "Need not found")
	case errors.Is(err, types.ErrBasketItemNotFound):
		s.respondError(w, http.StatusNotFound, "Basket item not found")
	case errors.Is(err, types.ErrUserNotFound):
		s.respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, types.ErrEmptyBasket):
		s.respondError(w, http.StatusBadRequest, "Basket is empty")
	case errors.Is(err, types.ErrInsufficientQuantity):
		msg := "Requested quantity exceeds available quantity"
		var iq *types.InsufficientQuantityError
		if errors.As(err, &iq) && iq.NeedName != "" {
			msg = "Insufficient quantity for " + iq.NeedName
		}
		s.respondError(w, http.StatusBadRequest, msg)
	default:
		s.internalServerError(w, err, logMsg)
	}
}

// decodeJSON parses a request body into dst, rejecting unknown fields so
// malformed payloads fail at the boundary instead of deep in a handler.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
