package api

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/auth"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/export"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/metrics"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

type loginRequest struct {
	Password string `json:"password"`
}

// handleAdminLogin exchanges the admin password for a bearer token.
// POST /api/admin/login
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("admin_login")

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.auth.Login(req.Password)
	if err != nil {
		if err == auth.ErrBadPassword {
			writeError(w, http.StatusUnauthorized, "incorrect password, please try again")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleAdminBookings lists all bookings, newest first, with today's
// bookings broken out separately sorted by first slot time.
// GET /api/admin/bookings
func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("admin_bookings")

	bookings := s.engine.Bookings()
	today := time.Now().Format("2006-01-02")

	var todays []models.Booking
	for i := range bookings {
		if bookings[i].Date == today {
			todays = append(todays, bookings[i])
		}
	}
	sort.Slice(todays, func(i, j int) bool {
		return todays[i].FirstSlotTime() < todays[j].FirstSlotTime()
	})

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"today":    todays,
		"bookings": bookings,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// handleAdminUpdateStatus applies an approve/reject decision. Missing
// bookings are a benign race with another admin session and succeed.
// PATCH /api/admin/bookings/:id/status
func (s *Server) handleAdminUpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("admin_update_status")

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.UpdateBookingStatus(r.Context(), ps.ByName("id"), req.Status); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminRemoveBooking deletes a booking; repeated deletes no-op.
// DELETE /api/admin/bookings/:id
func (s *Server) handleAdminRemoveBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("admin_remove_booking")

	if err := s.engine.RemoveBooking(r.Context(), ps.ByName("id")); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminRemoveSlot strikes one slot from a booking.
// DELETE /api/admin/bookings/:id/slots/:slotID
func (s *Server) handleAdminRemoveSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("admin_remove_slot")

	if err := s.engine.RemoveSlotFromBooking(r.Context(), ps.ByName("id"), ps.ByName("slotID")); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminExport serves all bookings as an Excel workbook. The
// workbook is rendered in memory first so a failure becomes an error
// response instead of a truncated download.
// GET /api/admin/bookings/export
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("admin_export")

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, s.engine.Bookings()); err != nil {
		s.logger.Error().Err(err).Msg("export bookings failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
