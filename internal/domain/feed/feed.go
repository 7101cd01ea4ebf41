// Package feed models the RSS feed of recently added or updated documents.
package feed

import (
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/dlf/internal/domain/document"
)

// Labels are the localized strings used in item titles.
type Labels struct {
	NoTitle string
	Volume  string
	New     string
	Update  string
}

// DefaultLabels returns the English item title labels.
func DefaultLabels() Labels {
	return Labels{
		NoTitle: "[no title]",
		Volume:  "Volume",
		New:     "New:",
		Update:  "Update:",
	}
}

// WithDefaults fills empty labels from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	if l.NoTitle == "" {
		l.NoTitle = d.NoTitle
	}
	if l.Volume == "" {
		l.Volume = d.Volume
	}
	if l.New == "" {
		l.New = d.New
	}
	if l.Update == "" {
		l.Update = d.Update
	}
	return l
}

// Settings configure one feed.
type Settings struct {
	Library                 int
	Collections             []int
	ExcludeOtherCollections bool
	Limit                   int
	PrependSuperiorTitle    bool
	PageViewPID             int
	Title                   string
	Description             string
	Labels                  Labels
}

// Allows reports whether documents of the requested collections may be listed.
// Without exclusion, or without a requested collection, everything is allowed;
// otherwise every requested id must be in the allowlist.
func (s Settings) Allows(requested []int) bool {
	if !s.ExcludeOtherCollections || len(requested) == 0 {
		return true
	}
	for _, id := range requested {
		if !slices.Contains(s.Collections, id) {
			return false
		}
	}
	return true
}

// Library is the institution a feed is published for.
type Library struct {
	UID     int
	Label   string
	Website string
}

// Feed is a rendered channel.
type Feed struct {
	Title       string
	Description string
	Link        string
	Copyright   string
	Items       []Item
}

// Item is one feed entry.
type Item struct {
	Title       string
	Link        string
	GUID        string
	Description string
	PubDate     time.Time
}

// ItemTitle composes an entry title: the superior title in brackets (when the document
// has none of its own or prepend is set), the document title, the volume and a new/update prefix.
func ItemTitle(doc document.Document, prependSuperior bool, labels Labels) string {
	var b strings.Builder
	if (doc.Title() == "" || prependSuperior) && doc.HasParent() && doc.SuperiorTitle() != "" {
		b.WriteString("[" + doc.SuperiorTitle() + "]")
	}
	if doc.Title() != "" {
		b.WriteString(" " + doc.Title())
	}

	title := b.String()
	if title == "" {
		title = labels.NoTitle
	}
	if doc.Volume() != "" {
		title += ", " + labels.Volume + " " + doc.Volume()
	}

	prefix := labels.Update
	if doc.IsNew() {
		prefix = labels.New
	}
	return strings.TrimSpace(prefix + " " + strings.TrimSpace(title))
}
