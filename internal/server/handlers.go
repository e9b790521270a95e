package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/internal/eventbus"
	"github.com/ngcde/assignment-tracker/internal/report"
	"github.com/ngcde/assignment-tracker/internal/snapshot"
	"github.com/ngcde/assignment-tracker/pkg/cerr"
)

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req assignment.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.BadFormat, "request body is not valid JSON", err)
		return
	}
	created, err := s.store.Create(req)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeAssignmentCreated, created.ID, created.Title)
	cerr.SetJSONResponse(ctx, created)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := assignment.Filter{
		Engineer: assignment.Engineer(q.Get("engineer")),
		Status:   assignment.Status(q.Get("status")),
		Priority: assignment.Priority(q.Get("priority")),
	}
	cerr.SetJSONResponse(r.Context(), s.store.List(f))
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := assignmentID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	a, err := s.store.Get(id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, a)
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := assignmentID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var req assignment.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.BadFormat, "request body is not valid JSON", err)
		return
	}
	req.ID = id
	updated, err := s.store.Update(req)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeAssignmentUpdated, updated.ID, updated.Title)
	cerr.SetJSONResponse(ctx, updated)
}

type dashboardResponse struct {
	Summary              report.Summary            `json:"summary"`
	StatusDistribution   []report.StatusCount      `json:"status_distribution"`
	PriorityDistribution []report.PriorityCount    `json:"priority_distribution"`
	Workload             []report.EngineerWorkload `json:"workload"`
	Recent               []*assignment.Assignment  `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	records := s.store.List(assignment.Filter{})
	now := time.Now()
	cerr.SetJSONResponse(r.Context(), dashboardResponse{
		Summary:              report.Summarize(records, now),
		StatusDistribution:   report.StatusDistribution(records),
		PriorityDistribution: report.PriorityDistribution(records),
		Workload:             report.WorkloadByEngineer(records),
		Recent:               report.Recent(records, 5),
	})
}

type analyticsResponse struct {
	MonthlyCreated     []report.MonthCount   `json:"monthly_created"`
	AvgCompletionDays  *float64              `json:"avg_completion_days"`
	TimeEfficiency     *float64              `json:"time_efficiency"`
	CategoryCompletion []report.CategoryRate `json:"category_completion"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	records := s.store.List(assignment.Filter{})
	resp := analyticsResponse{
		MonthlyCreated:     report.MonthlyCreationCounts(records),
		CategoryCompletion: report.CompletionRateByCategory(records),
	}
	if age, ok := report.AverageCompletionAge(records, time.Now()); ok {
		resp.AvgCompletionDays = &age
	}
	if eff, ok := report.TimeEfficiency(records); ok {
		resp.TimeEfficiency = &eff
	}
	cerr.SetJSONResponse(r.Context(), resp)
}

func (s *Server) handleEngineers(w http.ResponseWriter, r *http.Request) {
	records := s.store.List(assignment.Filter{})
	cerr.SetJSONResponse(r.Context(), report.WorkloadByEngineer(records))
}

func (s *Server) handleEngineerDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := assignment.Engineer(chi.URLParam(r, "role"))
	records := s.store.List(assignment.Filter{})
	detail, ok := report.DetailForEngineer(records, role)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.NotFound, fmt.Sprintf("no assignments for %q", role), nil)
		return
	}
	cerr.SetJSONResponse(ctx, detail)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	doc := snapshot.Export(s.store.List(assignment.Filter{}), time.Now())
	cerr.SetJSONResponse(r.Context(), doc)
}

type exportResponse struct {
	Archive string `json:"archive"`
}

func (s *Server) handleSnapshotExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc := snapshot.Export(s.store.List(assignment.Filter{}), time.Now())
	name, err := s.archiver.Archive(ctx, doc)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeSnapshotExported, 0, name)
	cerr.SetJSONResponse(ctx, exportResponse{Archive: name})
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleSnapshotImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.BadFormat, "failed to read request body", err)
		return
	}
	doc, err := snapshot.Decode(data)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.store.ReplaceAll(doc.Assignments); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.bus.PublishNew(eventbus.TypeSnapshotImported, 0, fmt.Sprintf("%d assignments", len(doc.Assignments)))
	cerr.SetJSONResponse(ctx, importResponse{Imported: len(doc.Assignments)})
}

type archivesResponse struct {
	Archives []string `json:"archives"`
}

func (s *Server) handleSnapshotArchives(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	names, err := s.archiver.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, archivesResponse{Archives: names})
}

func assignmentID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, cerr.NewError(cerr.Invalid, fmt.Sprintf("invalid assignment id %q", raw), err)
	}
	return id, nil
}
