package search

import (
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/dlf/internal/domain/search/result"
)

// Hash field names shared by both indexes.
const (
	fieldUID         = "uid"
	fieldPID         = "pid"
	fieldToplevel    = "toplevel"
	fieldPartOf      = "partof"
	fieldCollections = "collections"
	fieldTitle       = "title"
	fieldContent     = "__content"
	fieldMetadata    = "__metadata"
	fieldThumbnail   = "thumbnail"
	fieldStructure   = "structure"
	fieldOrderLabel  = "orderlabel"
	fieldToplevelUID = "toplevel_uid"
	fieldPage        = "page"
	fieldFulltext    = "fulltext"

	sortPrefix = "sort_"
)

// pageReturnFields skips the page text, which can be large.
var pageReturnFields = []string{
	fieldUID, fieldToplevelUID, fieldPage, fieldTitle, fieldThumbnail,
	fieldStructure, fieldOrderLabel, fieldMetadata,
}

// displayFromHash hydrates the rendered fields of a hit, projecting metadata to listed.
func displayFromHash(m map[string]string, listed []string) result.Display {
	var metadata map[string][]string
	if raw := m[fieldMetadata]; raw != "" {
		// A corrupt metadata blob renders the hit without metadata.
		_ = json.Unmarshal([]byte(raw), &metadata)
	}
	return result.Display{
		Title:      m[fieldTitle],
		Thumbnail:  m[fieldThumbnail],
		Structure:  m[fieldStructure],
		OrderLabel: m[fieldOrderLabel],
		Metadata:   result.Project(metadata, listed),
	}
}

func uidFromHash(m map[string]string, field string) (int, bool) {
	uid, err := strconv.Atoi(m[field])
	if err != nil || uid <= 0 {
		return 0, false
	}
	return uid, true
}
