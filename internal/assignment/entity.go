package assignment

import (
	"fmt"
	"time"
)

// Engineer is one of the six chief engineer roles assignments are issued to.
type Engineer string

const (
	EngineerSubstationDesign       Engineer = "Chief Engineer (Substation Design)"
	EngineerTransmissionLineDesign Engineer = "Chief Engineer (Transmission Line Design)"
	EngineerTelecom                Engineer = "Chief Engineer (Telecom)"
	EngineerScadaIII               Engineer = "Chief Engineer (Scada-III)"
	EngineerProtectionControl      Engineer = "Chief Engineer (Protection & Control)"
	EngineerStandardsSpec          Engineer = "Chief Engineer (Standards & Specification)"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type Status string

const (
	StatusNotStarted  Status = "Not Started"
	StatusInProgress  Status = "In Progress"
	StatusUnderReview Status = "Under Review"
	StatusCompleted   Status = "Completed"
	StatusOnHold      Status = "On Hold"
)

type Category string

const (
	CategoryDesignReview   Category = "Design Review"
	CategoryTechSpec       Category = "Technical Specification"
	CategoryQA             Category = "Quality Assurance"
	CategoryPlanning       Category = "Project Planning"
	CategorySystemAnalysis Category = "System Analysis"
	CategoryDocumentation  Category = "Documentation"
	CategoryTesting        Category = "Testing & Commissioning"
	CategoryOther          Category = "Other"
)

// Enumeration orders below are the declared display orders used by the
// reporting views.

func Engineers() []Engineer {
	return []Engineer{
		EngineerSubstationDesign,
		EngineerTransmissionLineDesign,
		EngineerTelecom,
		EngineerScadaIII,
		EngineerProtectionControl,
		EngineerStandardsSpec,
	}
}

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusUnderReview, StatusCompleted, StatusOnHold}
}

func Categories() []Category {
	return []Category{
		CategoryDesignReview,
		CategoryTechSpec,
		CategoryQA,
		CategoryPlanning,
		CategorySystemAnalysis,
		CategoryDocumentation,
		CategoryTesting,
		CategoryOther,
	}
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"
)

// Date is a calendar date carried on the wire as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	var d Date
	if err := d.parse(s); err != nil {
		return Date{}, err
	}
	return d, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	return d.parse(unquote(data))
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d *Date) parse(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Timestamp is a minute-resolution time carried on the wire as
// "YYYY-MM-DD HH:MM".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Minute)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	return t.parse(unquote(data))
}

func (t Timestamp) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *Timestamp) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return t.parse(s)
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func (t *Timestamp) parse(s string) error {
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.Parse(timestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func unquote(data []byte) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return ""
	}
	return s
}

// Comment is one append-only progress note on an assignment.
type Comment struct {
	Date    Timestamp `json:"date" yaml:"date"`
	Comment string    `json:"comment" yaml:"comment"`
}

// Assignment is a single trackable task record. CreatedDate is stamped once
// at creation and never mutated; Comments only grow.
type Assignment struct {
	ID             int       `json:"id" yaml:"id" validate:"min=1"`
	Title          string    `json:"title" yaml:"title" validate:"required"`
	AssignedTo     Engineer  `json:"assigned_to" yaml:"assigned_to" validate:"engineer"`
	Priority       Priority  `json:"priority" yaml:"priority" validate:"priority"`
	Status         Status    `json:"status" yaml:"status" validate:"status"`
	Category       Category  `json:"category" yaml:"category" validate:"category"`
	Description    string    `json:"description" yaml:"description" validate:"required"`
	Deliverables   string    `json:"deliverables" yaml:"deliverables"`
	DueDate        Date      `json:"due_date" yaml:"due_date" validate:"required"`
	CreatedDate    Timestamp `json:"created_date" yaml:"created_date" validate:"required"`
	EstimatedHours int       `json:"estimated_hours" yaml:"estimated_hours" validate:"min=1"`
	ActualHours    int       `json:"actual_hours" yaml:"actual_hours" validate:"min=0"`
	Progress       int       `json:"progress_percentage" yaml:"progress_percentage" validate:"min=0,max=100"`
	Comments       []Comment `json:"comments" yaml:"comments"`
}

// Clone returns a deep copy. The store never hands out its own records.
func (a *Assignment) Clone() *Assignment {
	clone := *a
	clone.Comments = make([]Comment, len(a.Comments))
	copy(clone.Comments, a.Comments)
	return &clone
}
