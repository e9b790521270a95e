package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/pkg/cerr"
	"github.com/ngcde/assignment-tracker/pkg/storage"
)

func sampleRecords() []*assignment.Assignment {
	created := assignment.NewTimestamp(time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC))
	return []*assignment.Assignment{
		{
			ID:             1,
			Title:          "Relay settings review",
			AssignedTo:     assignment.EngineerProtectionControl,
			Priority:       assignment.PriorityCritical,
			Status:         assignment.StatusInProgress,
			Category:       assignment.CategoryDesignReview,
			Description:    "Verify settings for the 220kV bays",
			DueDate:        assignment.NewDate(2025, time.July, 15),
			CreatedDate:    created,
			EstimatedHours: 16,
			ActualHours:    5,
			Progress:       30,
			Comments: []assignment.Comment{
				{Date: created, Comment: "kickoff meeting held"},
			},
		},
		{
			ID:             2,
			Title:          "Fiber route survey",
			AssignedTo:     assignment.EngineerTelecom,
			Priority:       assignment.PriorityMedium,
			Status:         assignment.StatusNotStarted,
			Category:       assignment.CategoryOther,
			Description:    "Survey OPGW route",
			DueDate:        assignment.NewDate(2025, time.August, 1),
			CreatedDate:    created,
			EstimatedHours: 8,
			Comments:       []assignment.Comment{},
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	records := sampleRecords()
	now := time.Date(2025, time.June, 1, 16, 45, 0, 0, time.UTC)

	data, err := Encode(Export(records, now))
	require.NoError(t, err)

	doc, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, records, doc.Assignments)
	assert.True(t, doc.ExportDate.Equal(now))

	// Importing the round-tripped set reproduces an identical store,
	// including the id counter position.
	store := assignment.NewStore()
	require.NoError(t, store.ReplaceAll(doc.Assignments))
	assert.Equal(t, records, store.List(assignment.Filter{}))

	next, err := store.Create(assignment.CreateRequest{
		Title:       "New after import",
		AssignedTo:  assignment.EngineerTelecom,
		Description: "x",
		DueDate:     assignment.NewDate(2025, time.September, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, next.ID)
}

func TestDecodeFormatErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"wrong top level", `[1, 2, 3]`},
		{"missing assignments", `{"export_date": "2025-06-01T16:45:00Z"}`},
		{"null assignments", `{"assignments": null, "export_date": "2025-06-01T16:45:00Z"}`},
		{"assignments not an array", `{"assignments": {"id": 1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data))
			assert.True(t, cerr.IsCode(err, cerr.BadFormat), "expected BadFormat, got %v", err)
		})
	}
}

func TestDecodeValidationErrors(t *testing.T) {
	doc := `{
  "assignments": [
    {
      "id": 1,
      "title": "",
      "assigned_to": "Chief Engineer (Telecom)",
      "priority": "High",
      "status": "Not Started",
      "category": "Other",
      "description": "d",
      "deliverables": "",
      "due_date": "2025-07-01",
      "created_date": "2025-06-01 10:00",
      "estimated_hours": 8,
      "actual_hours": 0,
      "progress_percentage": 0,
      "comments": []
    }
  ],
  "export_date": "2025-06-01T16:45:00Z"
}`
	_, err := Decode([]byte(doc))
	require.True(t, cerr.IsCode(err, cerr.Invalid), "expected Invalid, got %v", err)
	assert.Contains(t, err.Error(), "index 0")
}

func TestDecodeEmptySet(t *testing.T) {
	doc, err := Decode([]byte(`{"assignments": [], "export_date": "2025-06-01T16:45:00Z"}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Assignments)
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, time.June, 1, 16, 45, 0, 0, time.UTC)
	assert.Equal(t, "ngc_assignments_20250601_1645.json", FileName(now))
}

func TestArchiver(t *testing.T) {
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ar := NewArchiver(st)
	ctx := context.Background()

	records := sampleRecords()
	doc := Export(records, time.Date(2025, time.June, 1, 16, 45, 0, 0, time.UTC))

	name, err := ar.Archive(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "ngc_assignments_20250601_1645.json", name)

	loaded, err := ar.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, records, loaded.Assignments)

	names, err := ar.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	_, err = ar.Load(ctx, "ngc_assignments_19990101_0000.json")
	assert.True(t, cerr.IsCode(err, cerr.NotFound), "expected NotFound, got %v", err)

	// same export date means same file name, which must not be overwritten
	_, err = ar.Archive(ctx, doc)
	assert.True(t, cerr.IsCode(err, cerr.Invalid), "expected Invalid, got %v", err)
	names, err = ar.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}
