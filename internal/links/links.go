// Package links builds absolute deep links into the document viewer.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/dlf/internal/domain"
)

// Viewer query parameter names.
const (
	ParamPageID        = "id"
	ParamDocument      = "tx_dlf[id]"
	ParamPage          = "tx_dlf[page]"
	ParamHighlightWord = "tx_dlf[highlight_word]"
)

// Params are the viewer arguments of one link.
// Document links carry only the document; Page 0 and an empty HighlightWord are omitted.
// SearchHit links always carry page and highlight word, and require a page of at least 1.
type Params struct {
	Document      int
	Page          int
	HighlightWord string
	SearchHit     bool
}

// Builder creates viewer links relative to a fixed site base URL.
// Read-only after construction, safe for concurrent use.
type Builder struct {
	base *url.URL
}

// NewBuilder validates baseURL (absolute http/https) and joins path onto it.
func NewBuilder(baseURL, path string) (*Builder, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute")
	}
	if path != "" {
		u = u.JoinPath(path)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return &Builder{base: u}, nil
}

// Build returns the absolute link to targetPID carrying p.
// Parameters appear in a fixed order and every value is encoded exactly once.
func (b *Builder) Build(targetPID int, p Params) (string, error) {
	if targetPID <= 0 {
		return "", fmt.Errorf("%w: target page %d", domain.ErrLinkBuild, targetPID)
	}
	if p.Document <= 0 {
		return "", fmt.Errorf("%w: document %d", domain.ErrLinkBuild, p.Document)
	}
	if p.Page < 0 || (p.SearchHit && p.Page == 0) {
		return "", fmt.Errorf("%w: page %d", domain.ErrLinkBuild, p.Page)
	}

	var q strings.Builder
	writeParam(&q, ParamPageID, strconv.Itoa(targetPID))
	writeParam(&q, ParamDocument, strconv.Itoa(p.Document))
	if p.SearchHit || p.Page > 0 {
		writeParam(&q, ParamPage, strconv.Itoa(p.Page))
	}
	if p.SearchHit || p.HighlightWord != "" {
		writeParam(&q, ParamHighlightWord, p.HighlightWord)
	}

	u := *b.base
	u.RawQuery = q.String()
	return u.String(), nil
}

func writeParam(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
