package api

import (
	"net/http"

	"shareit/internal/service"
)

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	in := service.NewItem{Available: req.Available, RequestID: req.RequestID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	item, err := s.svc.Items.Create(r.Context(), userID(r.Context()), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(item))
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	item, err := s.svc.Items.Update(r.Context(), userID(r.Context()), id, service.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(item))
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.svc.Items.Delete(r.Context(), userID(r.Context()), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	view, err := s.svc.Items.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemView(view))
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request) {
	from, size, err := pageParams(r, s.pagination.ItemsSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	views, err := s.svc.Items.ListForOwner(r.Context(), userID(r.Context()), from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemViews(views))
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	from, size, err := pageParams(r, s.pagination.ItemsSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	items, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItems(items))
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	comment, err := s.svc.Items.AddComment(r.Context(), userID(r.Context()), id, req.Text)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComment(comment))
}
