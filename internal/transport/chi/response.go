package chi

import (
	"encoding/json"
	"net/http"

	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

type pageParams struct {
	PageSize int `json:"pageSize"`
	First    int `json:"first"`
	Last     int `json:"last"`
}

type searchResponse struct {
	Params            pageParams    `json:"params"`
	NumberOfToplevels int           `json:"numberOfToplevels"`
	NumHits           int           `json:"numHits"`
	Documents         []documentHit `json:"documents"`
}

type display struct {
	Title          string              `json:"title"`
	Thumbnail      string              `json:"thumbnail"`
	Metadata       map[string][]string `json:"metadata"`
	Structure      string              `json:"structure"`
	MetsOrderlabel string              `json:"metsOrderlabel"`
}

type documentHit struct {
	UID int `json:"uid"`
	display
	PageLink      string     `json:"pageLink"`
	Children      []childHit `json:"children,omitempty"`
	SearchResults []pageHit  `json:"searchResults,omitempty"`
}

type childHit struct {
	UID int `json:"uid"`
	display
	PageLink string `json:"pageLink"`
}

type pageHit struct {
	UID           int    `json:"uid"`
	Page          int    `json:"page"`
	HighlightWord string `json:"highlight_word"`
	display
	PageLink string `json:"pageLink"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFrom(resp searchuc.Response) searchResponse {
	docs := make([]documentHit, len(resp.Set.Documents))
	for i, d := range resp.Set.Documents {
		docs[i] = documentHitFrom(d)
	}
	return searchResponse{
		Params: pageParams{
			PageSize: resp.Page.PageSize,
			First:    resp.Page.First,
			Last:     resp.Page.Last,
		},
		NumberOfToplevels: resp.Set.NumberOfToplevels,
		NumHits:           resp.Set.NumHits,
		Documents:         docs,
	}
}

func documentHitFrom(d result.DocumentHit) documentHit {
	out := documentHit{
		UID:      d.UID,
		display:  displayFrom(d.Display),
		PageLink: d.PageLink,
	}
	for _, c := range d.Children {
		out.Children = append(out.Children, childHit{
			UID:      c.UID,
			display:  displayFrom(c.Display),
			PageLink: c.PageLink,
		})
	}
	for _, p := range d.SearchResults {
		out.SearchResults = append(out.SearchResults, pageHit{
			UID:           p.UID,
			Page:          p.Page,
			HighlightWord: p.HighlightWord,
			display:       displayFrom(p.Display),
			PageLink:      p.PageLink,
		})
	}
	return out
}

// displayFrom never yields a null metadata object.
func displayFrom(d result.Display) display {
	md := d.Metadata
	if md == nil {
		md = map[string][]string{}
	}
	return display{
		Title:          d.Title,
		Thumbnail:      d.Thumbnail,
		Metadata:       md,
		Structure:      d.Structure,
		MetsOrderlabel: d.OrderLabel,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
