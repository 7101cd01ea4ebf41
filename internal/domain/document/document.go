package document

import (
	"fmt"
	"time"
)

// Document is a catalogued digitized work as listed in feeds (immutable value object).
type Document struct {
	uid           int
	pid           int
	recordID      string
	title         string
	superiorTitle string
	partOf        int
	volume        string
	author        string
	createdAt     time.Time
	updatedAt     time.Time
}

// New validates and creates a Document.
// UID > 0, record ID non-empty. A zero updatedAt defaults to createdAt.
func New(
	uid, pid int, recordID, title string, partOf int, volume, author string,
	createdAt, updatedAt time.Time,
) (Document, error) {
	if uid <= 0 {
		return Document{}, fmt.Errorf("document uid must be positive")
	}
	if recordID == "" {
		return Document{}, fmt.Errorf("document record id is required")
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	return Document{
		uid:       uid,
		pid:       pid,
		recordID:  recordID,
		title:     title,
		partOf:    partOf,
		volume:    volume,
		author:    author,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// WithSuperiorTitle returns a copy carrying the resolved title of the parent work.
func (d Document) WithSuperiorTitle(title string) Document {
	d.superiorTitle = title
	return d
}

// UID returns the document identifier.
func (d Document) UID() int { return d.uid }

// PID returns the storage boundary.
func (d Document) PID() int { return d.pid }

// RecordID returns the persistent record identifier.
func (d Document) RecordID() string { return d.recordID }

// Title returns the document's own title, possibly empty.
func (d Document) Title() string { return d.title }

// SuperiorTitle returns the title of the nearest titled ancestor, if resolved.
func (d Document) SuperiorTitle() string { return d.superiorTitle }

// PartOf returns the parent document uid (0 for toplevel works).
func (d Document) PartOf() int { return d.partOf }

// HasParent reports whether the document belongs to a multi-volume work.
func (d Document) HasParent() bool { return d.partOf > 0 }

// Volume returns the volume designation.
func (d Document) Volume() string { return d.volume }

// Author returns the author statement.
func (d Document) Author() string { return d.author }

// CreatedAt returns the creation time.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last modification time.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

// IsNew reports whether the document was never modified after creation.
func (d Document) IsNew() bool { return d.createdAt.Equal(d.updatedAt) }
