package snapshot

import (
	"context"
	"errors"

	"github.com/ngcde/assignment-tracker/pkg/cerr"
	"github.com/ngcde/assignment-tracker/pkg/storage"
)

// Archiver writes export documents to the configured storage backend and
// reads them back, using the conventional file naming.
type Archiver struct {
	st storage.Storage
}

func NewArchiver(st storage.Storage) *Archiver {
	return &Archiver{st: st}
}

// Archive encodes and stores the document, returning the archive file name.
// Archives are append-only: a second export within the same minute collides
// on the file name and is refused rather than overwritten.
func (ar *Archiver) Archive(ctx context.Context, doc *Document) (string, error) {
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}
	name := FileName(doc.ExportDate)
	exists, err := ar.st.Exists(ctx, name)
	if err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to check snapshot archive", err)
	}
	if exists {
		return "", cerr.NewError(cerr.Invalid, "snapshot archive "+name+" already exists", nil)
	}
	if err := ar.st.Write(ctx, name, data); err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to write snapshot archive", err)
	}
	return name, nil
}

// Load reads and decodes a previously archived snapshot.
func (ar *Archiver) Load(ctx context.Context, name string) (*Document, error) {
	data, err := ar.st.Read(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, cerr.NewError(cerr.NotFound, "snapshot archive "+name+" not found", err)
		}
		return nil, cerr.NewError(cerr.Internal, "failed to read snapshot archive", err)
	}
	return Decode(data)
}

// List returns the archived snapshot names, oldest first.
func (ar *Archiver) List(ctx context.Context) ([]string, error) {
	names, err := ar.st.List(ctx)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "failed to list snapshot archives", err)
	}
	return names, nil
}
