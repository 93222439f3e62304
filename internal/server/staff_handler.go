package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/clog"
)

type StaffStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, size, err := pageParams(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.query.ListStaff(staff.Status(r.URL.Query().Get("status")), page, size)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}

func (s *Server) getStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "staffID")
	clog.AddAttribute(ctx, clog.StaffAttributeKey, id)
	m, err := s.engine.GetStaff(id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, m)
}

func (s *Server) setStaffStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req StaffStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	m, err := s.engine.SetStaffStatus(ctx, chi.URLParam(r, "staffID"), staff.Status(req.Status))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, m)
}

func (s *Server) listStaffTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, size, err := pageParams(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.query.ListByStaff(chi.URLParam(r, "staffID"), page, size)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, size, err := pageParams(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	newest, err := boolParam(r, "newest")
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	q := r.URL.Query()
	f := query.HistoryFilter{
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		StaffID: q.Get("staff"),
		Newest:  newest,
	}
	res, err := s.query.QueryHistory(f, page, size)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), s.query.Summary())
}
