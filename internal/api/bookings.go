package api

import (
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/export"
	"shareit/internal/service"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.ItemID == 0 || req.Start.IsZero() || req.End.IsZero() {
		s.writeDomainError(w, r, domain.ErrValidation.Withf("itemId, start and end are required"))
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), userID(r.Context()), service.NewBooking{
		ItemID: req.ItemID,
		Start:  req.Start.Time,
		End:    req.End.Time,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(booking))
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		s.writeDomainError(w, r, domain.ErrValidation.Withf("query parameter approved must be true or false"))
		return
	}

	booking, err := s.svc.Bookings.Decide(r.Context(), userID(r.Context()), id, approved)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(booking))
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBooking(booking))
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	from, size, err := pageParams(r, s.pagination.BookingsSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListForBooker(r.Context(), userID(r.Context()), stateParam(r), from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookings(bookings))
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	from, size, err := pageParams(r, s.pagination.BookingsSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListForOwner(r.Context(), userID(r.Context()), stateParam(r), from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookings(bookings))
}

func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID := userID(r.Context())
	bookings, err := s.svc.Bookings.ExportForOwner(r.Context(), ownerID, stateParam(r), s.pagination.MaxExportRows)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_owner_%d.xlsx"`, ownerID))
	if err := export.WriteBookings(w, bookings); err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("export bookings failed")
	}
}
