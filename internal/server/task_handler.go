package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/internal/room"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/clog"
)

type CreateTaskRequest struct {
	RoomNumber string `json:"roomNumber"`
	RoomType   string `json:"roomType"`
	Priority   string `json:"priority,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type StartTaskRequest struct {
	StaffID string `json:"staffId"`
}

type ExceptionRequest struct {
	Reason string `json:"reason"`
}

type PriorityRequest struct {
	Priority string `json:"priority"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type AutoGenerateRequest struct {
	Rooms []room.Descriptor `json:"rooms"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, size, err := pageParams(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	q := r.URL.Query()
	f := query.TaskFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: task.Priority(q.Get("priority")),
		StaffID:  q.Get("staff"),
		Sort:     query.TaskSort(q.Get("sort")),
	}
	res, err := s.query.QueryTasks(f, page, size)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	in := engine.CreateTaskInput{
		RoomNumber: req.RoomNumber,
		RoomType:   req.RoomType,
		Notes:      req.Notes,
	}
	if req.Priority != "" {
		p, err := task.ParsePriority(req.Priority)
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		in.Priority = p
	}
	t, err := s.engine.CreateTask(ctx, in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "taskID")
	clog.AddAttribute(ctx, clog.TaskAttributeKey, id)
	t, err := s.engine.GetTask(id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) startTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req StartTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.engine.StartTask(ctx, chi.URLParam(r, "taskID"), req.StaffID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.engine.CompleteTask(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) reportException(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ExceptionRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.engine.ReportException(ctx, chi.URLParam(r, "taskID"), req.Reason)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) setPriority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req PriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := task.ParsePriority(req.Priority)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.engine.SetPriority(ctx, chi.URLParam(r, "taskID"), p)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) setNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.engine.SetNotes(ctx, chi.URLParam(r, "taskID"), req.Notes)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) autoAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.engine.AutoAssign(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}

func (s *Server) autoGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AutoGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.engine.AutoGenerate(ctx, req.Rooms)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}
