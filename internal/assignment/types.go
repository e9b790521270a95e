package assignment

// CreateRequest carries the creation-form fields. Priority, Status, Category
// and EstimatedHours fall back to the form defaults when left empty.
type CreateRequest struct {
	Title          string   `json:"title" validate:"required"`
	AssignedTo     Engineer `json:"assigned_to" validate:"engineer"`
	Priority       Priority `json:"priority" validate:"priority"`
	Status         Status   `json:"status" validate:"status"`
	Category       Category `json:"category" validate:"category"`
	Description    string   `json:"description" validate:"required"`
	Deliverables   string   `json:"deliverables"`
	DueDate        Date     `json:"due_date" validate:"required"`
	EstimatedHours int      `json:"estimated_hours" validate:"min=1,max=1000"`
}

// UpdateRequest applies a partial update. Nil fields are left untouched; a
// non-empty Comment is appended with the current timestamp.
type UpdateRequest struct {
	ID          int     `json:"-"`
	Status      *Status `json:"status,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
	ActualHours *int    `json:"actual_hours,omitempty"`
	Comment     string  `json:"comment,omitempty"`
}

// Filter narrows List results. Empty fields match everything; set fields are
// combined with AND semantics.
type Filter struct {
	Engineer Engineer
	Status   Status
	Priority Priority
}

func (f Filter) Match(a *Assignment) bool {
	if f.Engineer != "" && a.AssignedTo != f.Engineer {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	return true
}

func (req *CreateRequest) applyDefaults() {
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if req.Status == "" {
		req.Status = StatusNotStarted
	}
	if req.Category == "" {
		req.Category = CategoryOther
	}
	if req.EstimatedHours == 0 {
		req.EstimatedHours = 8
	}
}
