package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/engine"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/metrics"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/payments"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/slots"
)

// handleListSlots returns the hourly catalog with derived availability,
// plus the runs of consecutive free slots the UI offers as multi-hour
// options.
// GET /api/slots?date=YYYY-MM-DD (defaults to today)
func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("list_slots")

	date := r.URL.Query().Get("date")
	if date == "" {
		date = slots.Today()
	}

	catalog, err := s.engine.ListSlots(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":          date,
		"slots":         catalog,
		"availableRuns": slots.GroupConsecutive(catalog),
	})
}

type createSessionRequest struct {
	Date string `json:"date"`
}

// handleCreateSession opens a selection session.
// POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("create_session")

	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Date == "" {
		req.Date = slots.Today()
	}

	session, err := s.engine.CreateSession(req.Date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

// handleGetSession returns the session form and running total.
// GET /api/sessions/:id
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("get_session")

	session, err := s.engine.Session(ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

type contactRequest struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
}

// handleUpdateContact sets the customer identity fields.
// PUT /api/sessions/:id/contact
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("update_contact")

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.UpdateContact(ps.ByName("id"), req.FullName, req.MobileNumber); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectSlotRequest struct {
	SlotID string `json:"slotId"`
}

// handleSelectSlot adds a slot to the selection. Unavailable slots are
// silently ignored and reported back through the session state.
// POST /api/sessions/:id/slots
func (s *Server) handleSelectSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("select_slot")

	var req selectSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.SelectSlot(r.Context(), ps.ByName("id"), req.SlotID); err != nil {
		respondEngineError(w, err)
		return
	}

	session, err := s.engine.Session(ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// handleDeselectSlot removes a slot from the selection; absent ids no-op.
// DELETE /api/sessions/:id/slots/:slotID
func (s *Server) handleDeselectSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("deselect_slot")

	if err := s.engine.DeselectSlot(ps.ByName("id"), ps.ByName("slotID")); err != nil {
		respondEngineError(w, err)
		return
	}

	session, err := s.engine.Session(ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// handleCancelSession discards the session entirely, for customers who
// abandon the flow. Unknown ids succeed.
// DELETE /api/sessions/:id
func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("cancel_session")

	s.engine.CancelSession(ps.ByName("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleResetSession clears the form back to empty.
// POST /api/sessions/:id/reset
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("reset_session")

	if err := s.engine.ResetSession(ps.ByName("id")); err != nil {
		respondEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitRequest struct {
	PaymentScreenshot string `json:"paymentScreenshot,omitempty"`
}

// handleSubmitBooking validates the form, records the booking, and
// returns it with a UPI payment link.
// POST /api/sessions/:id/submit
func (s *Server) handleSubmitBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("submit_booking")

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.engine.SubmitBooking(r.Context(), ps.ByName("id"), req.PaymentScreenshot)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	link := s.payments.Link(payments.Details{
		Amount:      booking.TotalAmount,
		Description: fmt.Sprintf("Sixers booking %s", booking.ID),
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"booking":     booking,
		"paymentLink": link,
	})
}

// handlePaymentQR renders a UPI payment QR code.
// GET /api/payments/qr?amount=1200&note=...
func (s *Server) handlePaymentQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("payment_qr")

	amount, err := strconv.Atoi(r.URL.Query().Get("amount"))
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	png, err := s.payments.QRCode(payments.Details{
		Amount:      amount,
		Description: r.URL.Query().Get("note"),
	}, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func sessionResponse(session *engine.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":          session.ID,
		"form":        session.Snapshot(),
		"totalAmount": session.TotalAmount(),
	}
}
