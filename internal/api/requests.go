package api

import (
	"net/http"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req itemRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	created, err := s.svc.Requests.Create(r.Context(), userID(r.Context()), req.Description)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequest(created))
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.svc.Requests.ListOwn(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequests(requests))
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	from, size, err := pageParams(r, s.pagination.RequestsSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	requests, err := s.svc.Requests.ListOthers(r.Context(), userID(r.Context()), from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequests(requests))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	req, err := s.svc.Requests.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequest(req))
}
