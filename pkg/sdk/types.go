package dlf

import (
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

// Settings is the plugin configuration sealed into a token.
// ItemsPerPage <= 0 selects the default page size.
type Settings struct {
	Core         string
	StoragePID   int
	PageViewPID  int
	ItemsPerPage int
	Collections  []int
}

// Response is one page of search results.
type Response struct {
	PageSize          int
	First             int
	Last              int
	NumberOfToplevels int
	NumHits           int
	Documents         []Document
}

// Display holds the fields rendered for any hit.
type Display struct {
	Title          string
	Thumbnail      string
	Structure      string
	MetsOrderlabel string
	Metadata       map[string][]string
}

// Document is a toplevel hit.
type Document struct {
	UID int
	Display
	PageLink      string
	Children      []Child
	SearchResults []PageHit
}

// Child is a volume or issue of a toplevel hit.
type Child struct {
	UID int
	Display
	PageLink string
}

// PageHit is a fulltext match on one page.
type PageHit struct {
	UID           int
	Page          int
	HighlightWord string
	Display
	PageLink string
}

func responseFrom(resp searchuc.Response) *Response {
	out := &Response{
		PageSize:          resp.Page.PageSize,
		First:             resp.Page.First,
		Last:              resp.Page.Last,
		NumberOfToplevels: resp.Set.NumberOfToplevels,
		NumHits:           resp.Set.NumHits,
		Documents:         make([]Document, 0, len(resp.Set.Documents)),
	}
	for _, d := range resp.Set.Documents {
		doc := Document{UID: d.UID, Display: displayFrom(d.Display), PageLink: d.PageLink}
		for _, ch := range d.Children {
			doc.Children = append(doc.Children, Child{
				UID:      ch.UID,
				Display:  displayFrom(ch.Display),
				PageLink: ch.PageLink,
			})
		}
		for _, p := range d.SearchResults {
			doc.SearchResults = append(doc.SearchResults, PageHit{
				UID:           p.UID,
				Page:          p.Page,
				HighlightWord: p.HighlightWord,
				Display:       displayFrom(p.Display),
				PageLink:      p.PageLink,
			})
		}
		out.Documents = append(out.Documents, doc)
	}
	return out
}

func displayFrom(d result.Display) Display {
	return Display{
		Title:          d.Title,
		Thumbnail:      d.Thumbnail,
		Structure:      d.Structure,
		MetsOrderlabel: d.OrderLabel,
		Metadata:       d.Metadata,
	}
}
