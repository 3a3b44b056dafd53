package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

type workItemResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type addWorkItemRequest struct {
	Name string `json:"name"`
}

type currentResponse struct {
	Working bool   `json:"working"`
	ItemID  *int64 `json:"item_id"`
}

type setCurrentRequest struct {
	ItemID *int64 `json:"item_id"`
}

type eventResponse struct {
	Start  time.Time `json:"start"`
	ItemID *int64    `json:"item_id"`
}

type itemTotalResponse struct {
	ItemID  int64 `json:"item_id"`
	Seconds int64 `json:"seconds"`
}

type todayResponse struct {
	Date          string              `json:"date"`
	Current       currentResponse     `json:"current"`
	WorkedSeconds int64               `json:"worked_seconds"`
	Events        []eventResponse     `json:"events"`
	Items         []itemTotalResponse `json:"items"`
}

type dayResponse struct {
	Date            string `json:"date"`
	WorkedSeconds   *int64 `json:"worked_seconds"`
	ExpectedSeconds int64  `json:"expected_seconds"`
	DiffSeconds     int64  `json:"diff_seconds"`
	Error           string `json:"error,omitempty"`
}

type diffResponse struct {
	Seconds int64 `json:"seconds"`
}

type errorResponse struct {
	Error string `json:"error"`
	Date  string `json:"date,omitempty"`
}

func (s *Server) handleListWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.AvailableWork()
	if err != nil {
		s.internalError(w, "list work items", err)
		return
	}
	out := make([]workItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, workItemResponse{ID: it.ID, Title: it.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddWorkItem(w http.ResponseWriter, r *http.Request) {
	var req addWorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}
	created, err := s.store.AddWorkItem(req.Name)
	if err != nil {
		s.internalError(w, "add work item", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"created": created})
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.CurrentWork()
	if err != nil {
		s.internalError(w, "current work", err)
		return
	}
	writeJSON(w, http.StatusOK, currentOf(st))
}

func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req setCurrentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	st := store.Idle
	if req.ItemID != nil {
		if _, err := s.store.GetWorkItem(*req.ItemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown work item"})
				return
			}
			s.internalError(w, "get work item", err)
			return
		}
		st = store.Working(*req.ItemID)
	}

	if err := s.store.SetCurrentWork(st); err != nil {
		s.internalError(w, "set current work", err)
		return
	}
	writeJSON(w, http.StatusOK, currentOf(st))
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	today, err := s.engine.Today()
	if err != nil {
		s.internalError(w, "today", err)
		return
	}
	resp := todayResponse{
		Date:          today.Date.String(),
		Current:       currentOf(today.Current),
		WorkedSeconds: int64(today.Worked / time.Second),
		Events:        make([]eventResponse, 0, len(today.Events)),
		Items:         make([]itemTotalResponse, 0, len(today.PerItem)),
	}
	for _, ev := range today.Events {
		resp.Events = append(resp.Events, eventResponse{Start: ev.Start, ItemID: itemPtr(ev.State)})
	}
	// Item order follows the first event for each item.
	seen := make(map[int64]bool)
	for _, ev := range today.Events {
		id, ok := ev.State.Item()
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		resp.Items = append(resp.Items, itemTotalResponse{ItemID: id, Seconds: int64(today.PerItem[id] / time.Second)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	days, err := s.engine.WorkTimeByDay()
	if err != nil {
		s.internalError(w, "ledger", err)
		return
	}
	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		day := dayResponse{
			Date:            d.Date.String(),
			ExpectedSeconds: int64(d.Expected / time.Second),
			DiffSeconds:     int64(d.Diff() / time.Second),
		}
		if d.Err != nil {
			day.Error = d.Err.Error()
		} else {
			secs := int64(d.Worked / time.Second)
			day.WorkedSeconds = &secs
		}
		out = append(out, day)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	diff, err := s.engine.TimeDiff()
	var ie *accounting.InconsistentError
	switch {
	case errors.As(err, &ie):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ie.Error(), Date: ie.Date.String()})
	case err != nil:
		s.internalError(w, "time diff", err)
	default:
		writeJSON(w, http.StatusOK, diffResponse{Seconds: int64(diff / time.Second)})
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", logging.KeyOperation, op, logging.KeyError, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func currentOf(st store.State) currentResponse {
	return currentResponse{Working: st.IsWorking(), ItemID: itemPtr(st)}
}

func itemPtr(st store.State) *int64 {
	id, ok := st.Item()
	if !ok {
		return nil
	}
	return &id
}
