package server

import (
	"net/http"

	"github.com/alexedwards/flow"
)

type addToBasketRequest struct {
	NeedID   string `json:"need_id"`
	Quantity int    `json:"quantity"`
}

type updateBasketRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Service) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	lines, err := s.basket.LinesByUser(r.Context(), session.Username)
	if err != nil {
		s.internalServerError(w, err, "failed to fetch basket")
		return
	}

	s.respondJSON(w, http.StatusOK, lines)
}

func (s *Service) handleAddToBasket(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req addToBasketRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.NeedID == "" || req.Quantity <= 0 {
		s.respondError(w, http.StatusBadRequest, "Valid need_id and quantity are required")
		return
	}

	need, err := s.needs.Need(r.Context(), req.NeedID)
	if err != nil {
		s.respondStoreError(w, err, "failed to fetch need for basket add")
		return
	}

	if req.Quantity > need.Quantity {
		s.respondError(w, http.StatusBadRequest, "Requested quantity exceeds available quantity")
		return
	}

	if err := s.basket.Upsert(r.Context(), session.Username, req.NeedID, req.Quantity); err != nil {
		s.internalServerError(w, err, "failed to upsert basket item")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{"message": "Item added to basket"})
}

func (s *Service) handleUpdateBasketItem(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	itemID := flow.Param(r.Context(), "id")

	var req updateBasketRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity <= 0 {
		s.respondError(w, http.StatusBadRequest, "Valid quantity is required")
		return
	}

	// Ownership check first: someone else's item reads as missing.
	item, err := s.basket.Item(r.Context(), itemID, session.Username)
	if err != nil {
		s.respondStoreError(w, err, "failed to fetch basket item")
		return
	}

	need, err := s.needs.Need(r.Context(), item.NeedID)
	if err != nil {
		s.respondStoreError(w, err, "failed to fetch need for basket update")
		return
	}

	if req.Quantity > need.Quantity {
		s.respondError(w, http.StatusBadRequest, "Requested quantity exceeds available quantity")
		return
	}

	if err := s.basket.UpdateQuantity(r.Context(), itemID, session.Username, req.Quantity); err != nil {
		s.respondStoreError(w, err, "failed to update basket item")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Basket item updated"})
}

func (s *Service) handleRemoveFromBasket(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := s.basket.Remove(r.Context(), flow.Param(r.Context(), "id"), session.Username); err != nil {
		s.respondStoreError(w, err, "failed to remove basket item")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from basket"})
}

func (s *Service) handleCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	result, err := s.checkout.Checkout(r.Context(), session.Username)
	if err != nil {
		s.respondStoreError(w, err, "checkout failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Checkout successful",
		"itemsFunded": result.ItemsFunded,
	})
}
