// Package snapshot implements the JSON export/import document: the only
// persistence the tracker has across sessions.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/pkg/cerr"
)

// Document is the export file shape. ExportDate records when the snapshot was
// taken and plays no role on import.
type Document struct {
	Assignments []*assignment.Assignment `json:"assignments"`
	ExportDate  time.Time                `json:"export_date"`
}

// Export builds a document from a snapshot of the store.
func Export(records []*assignment.Assignment, now time.Time) *Document {
	if records == nil {
		records = []*assignment.Assignment{}
	}
	return &Document{
		Assignments: records,
		ExportDate:  now,
	}
}

// Encode renders the document the way the export file has always looked:
// two-space indented JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to encode snapshot: %w", err))
	}
	return data, nil
}

// Decode parses and validates an import document. The whole document is
// checked before anything is returned, so a caller feeding the result to
// Store.ReplaceAll gets all-or-nothing semantics: a BadFormat error for a
// malformed document or wrong top-level shape, an Invalid error naming the
// first offending record for any schema violation.
func Decode(data []byte) (*Document, error) {
	var raw struct {
		Assignments json.RawMessage `json:"assignments"`
		ExportDate  time.Time       `json:"export_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, cerr.NewError(cerr.BadFormat, "snapshot is not a valid JSON document", err)
	}
	if raw.Assignments == nil {
		return nil, cerr.NewError(cerr.BadFormat, "snapshot has no \"assignments\" key", nil)
	}
	// A JSON null would unmarshal into a nil slice without error below,
	// turning a broken document into a store wipe on import.
	if bytes.Equal(bytes.TrimSpace(raw.Assignments), []byte("null")) {
		return nil, cerr.NewError(cerr.BadFormat, "\"assignments\" is not an array", nil)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw.Assignments, &elements); err != nil {
		return nil, cerr.NewError(cerr.BadFormat, "\"assignments\" is not an array", err)
	}

	doc := &Document{
		Assignments: make([]*assignment.Assignment, 0, len(elements)),
		ExportDate:  raw.ExportDate,
	}
	for i, element := range elements {
		var a assignment.Assignment
		dec := json.NewDecoder(bytes.NewReader(element))
		if err := dec.Decode(&a); err != nil {
			return nil, cerr.NewError(cerr.Invalid, fmt.Sprintf("assignment at index %d is malformed", i), err)
		}
		if err := assignment.ValidateRecord(&a); err != nil {
			return nil, cerr.NewError(cerr.Invalid, fmt.Sprintf("assignment at index %d: %s", i, errMsg(err)), err)
		}
		if a.Comments == nil {
			a.Comments = []assignment.Comment{}
		}
		doc.Assignments = append(doc.Assignments, &a)
	}
	return doc, nil
}

// FileName renders the conventional export file name,
// ngc_assignments_<YYYYMMDD_HHMM>.json.
func FileName(now time.Time) string {
	return fmt.Sprintf("ngc_assignments_%s.json", now.Format("20060102_1504"))
}

func errMsg(err error) string {
	var cErr *cerr.Error
	if errors.As(err, &cErr) {
		return cErr.Msg
	}
	return err.Error()
}
