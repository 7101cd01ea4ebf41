package result

// Display holds the fields the list view renders for any hit.
type Display struct {
	Title      string
	Thumbnail  string
	Structure  string
	OrderLabel string
	Metadata   map[string][]string
}

// DocumentHit is a toplevel search hit with its nested children and page results.
type DocumentHit struct {
	UID int
	Display
	PageLink      string
	Children      []ChildHit
	SearchResults []PageHit
}

// ChildHit is a volume or issue below a toplevel hit.
type ChildHit struct {
	UID int
	Display
	PageLink string
}

// PageHit is a fulltext match on one page of a document.
type PageHit struct {
	UID           int
	Page          int
	HighlightWord string
	Display
	PageLink string
}

// Set is the output of one search execution.
// NumberOfToplevels is the unpaginated toplevel match count,
// NumHits the total number of matched sub-results.
type Set struct {
	NumberOfToplevels int
	NumHits           int
	Documents         []DocumentHit
}

// Page is the pagination block of a response.
type Page struct {
	PageSize int
	First    int
	Last     int
}

// NewPage computes the 1-based range of the returned documents.
// An empty page yields Last == offset, so First > Last.
func NewPage(offset, pageSize, returned int) Page {
	return Page{
		PageSize: pageSize,
		First:    offset + 1,
		Last:     offset + returned,
	}
}

// Project keeps only the listed metadata fields, dropping empty values lists.
// A nil listed slice yields an empty, non-nil map.
func Project(metadata map[string][]string, listed []string) map[string][]string {
	out := make(map[string][]string, len(listed))
	for _, name := range listed {
		if values, ok := metadata[name]; ok && len(values) > 0 {
			out[name] = values
		}
	}
	return out
}
