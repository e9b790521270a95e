package assignment

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ngcde/assignment-tracker/pkg/cerr"
)

// Store is the in-memory ordered collection of assignments. It owns every
// record it holds: callers get deep copies in and out, so no external
// aliasing can bypass the store invariants. A single mutex guards all
// operations; the workload is a single dashboard session and needs nothing
// finer grained.
type Store struct {
	mu      sync.Mutex
	records []*Assignment
	nextID  int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		now:    time.Now,
	}
}

// Create validates the request, assigns the next id and stamps the creation
// time. The id counter advances only on success.
func (s *Store) Create(req CreateRequest) (*Assignment, error) {
	req.applyDefaults()
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Assignment{
		ID:             s.nextID,
		Title:          req.Title,
		AssignedTo:     req.AssignedTo,
		Priority:       req.Priority,
		Status:         req.Status,
		Category:       req.Category,
		Description:    req.Description,
		Deliverables:   req.Deliverables,
		DueDate:        req.DueDate,
		CreatedDate:    NewTimestamp(s.now()),
		EstimatedHours: req.EstimatedHours,
		ActualHours:    0,
		Progress:       0,
		Comments:       []Comment{},
	}
	s.records = append(s.records, a)
	s.nextID++
	return a.Clone(), nil
}

// Update applies only the provided fields to the matching record. A non-empty
// comment is appended with the current timestamp.
func (s *Store) Update(req UpdateRequest) (*Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.find(req.ID)
	if a == nil {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("assignment %d not found", req.ID), nil)
	}

	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, cerr.NewError(cerr.Invalid, fmt.Sprintf("%q is not a valid status", *req.Status), nil)
		}
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, cerr.NewError(cerr.Invalid, "progress_percentage must be between 0 and 100", nil)
	}
	if req.ActualHours != nil && *req.ActualHours < 0 {
		return nil, cerr.NewError(cerr.Invalid, "actual_hours must not be negative", nil)
	}

	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Progress != nil {
		a.Progress = *req.Progress
	}
	if req.ActualHours != nil {
		a.ActualHours = *req.ActualHours
	}
	if req.Comment != "" {
		a.Comments = append(a.Comments, Comment{
			Date:    NewTimestamp(s.now()),
			Comment: req.Comment,
		})
	}
	return a.Clone(), nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id int) (*Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.find(id)
	if a == nil {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("assignment %d not found", id), nil)
	}
	return a.Clone(), nil
}

// List returns copies of the records matching the filter, in store order
// (insertion order equals creation order). An empty filter returns all.
func (s *Store) List(f Filter) []*Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*Assignment{}
	for _, a := range s.records {
		if f.Match(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Len reports the number of stored assignments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ReplaceAll swaps in a whole new record set, used by snapshot import. Every
// record is validated up front and the store is left untouched on any
// failure. The id counter is recomputed as max(id)+1, or 1 for an empty set,
// regardless of what the counter was before.
func (s *Store) ReplaceAll(records []*Assignment) error {
	replacement := make([]*Assignment, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	maxID := 0
	for i, a := range records {
		if err := ValidateRecord(a); err != nil {
			return cerr.NewError(cerr.Invalid, fmt.Sprintf("assignment at index %d: %s", i, validationMsg(err)), err)
		}
		if _, dup := seen[a.ID]; dup {
			return cerr.NewError(cerr.Invalid, fmt.Sprintf("assignment at index %d: duplicate id %d", i, a.ID), nil)
		}
		seen[a.ID] = struct{}{}
		if a.ID > maxID {
			maxID = a.ID
		}
		replacement = append(replacement, a.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = replacement
	s.nextID = maxID + 1
	return nil
}

func (s *Store) find(id int) *Assignment {
	for _, a := range s.records {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func validStatus(st Status) bool {
	for _, v := range Statuses() {
		if v == st {
			return true
		}
	}
	return false
}

func validationMsg(err error) string {
	var cErr *cerr.Error
	if errors.As(err, &cErr) {
		return cErr.Msg
	}
	return err.Error()
}
