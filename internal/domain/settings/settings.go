// Package settings holds the search configuration carried by the encrypted settings token.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/dlf/internal/domain"
)

// DefaultPageSize is used when the token carries no usable items-per-page value.
const DefaultPageSize = 25

// Configuration is the validated search configuration of one list view.
type Configuration struct {
	coreName      string
	storagePID    int
	pageViewPID   int
	pageSize      int
	collectionIDs []int
}

// New validates and creates a Configuration.
// pageSize below 1 is clamped to 1; collection ids that are not positive are dropped.
func New(coreName string, storagePID, pageViewPID, pageSize int, collectionIDs []int) (Configuration, error) {
	coreName = strings.TrimSpace(coreName)
	if coreName == "" {
		return Configuration{}, fmt.Errorf("%w: solrcore is required", domain.ErrValidation)
	}
	if storagePID <= 0 {
		return Configuration{}, fmt.Errorf("%w: storagePid must be positive", domain.ErrValidation)
	}
	if pageViewPID <= 0 {
		return Configuration{}, fmt.Errorf("%w: pageViewPid must be positive", domain.ErrValidation)
	}

	ids := make([]int, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		if id > 0 {
			ids = append(ids, id)
		}
	}

	return Configuration{
		coreName:      coreName,
		storagePID:    storagePID,
		pageViewPID:   pageViewPID,
		pageSize:      max(1, pageSize),
		collectionIDs: ids,
	}, nil
}

// CoreName returns the search engine core the list view queries.
func (c Configuration) CoreName() string { return c.coreName }

// StoragePID returns the storage boundary documents must belong to.
func (c Configuration) StoragePID() int { return c.storagePID }

// PageViewPID returns the viewer page generated links point to.
func (c Configuration) PageViewPID() int { return c.pageViewPID }

// PageSize returns the number of toplevel documents per result page.
func (c Configuration) PageSize() int { return c.pageSize }

// CollectionIDs returns the configured collection restriction (empty = none).
func (c Configuration) CollectionIDs() []int { return c.collectionIDs }

// Parse reads a decrypted settings payload.
// A payload that is not a JSON object fails with domain.ErrDecode,
// a JSON object with missing or malformed required fields with domain.ErrValidation.
func Parse(plain []byte) (Configuration, error) {
	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Configuration{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if raw == nil {
		return Configuration{}, fmt.Errorf("%w: payload is not an object", domain.ErrDecode)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Configuration{}, fmt.Errorf("%w: trailing data after payload", domain.ErrDecode)
	}

	core, ok := stringValue(raw["solrcore"])
	if !ok {
		return Configuration{}, fmt.Errorf("%w: solrcore must be a string", domain.ErrValidation)
	}
	storagePID, _ := intValue(raw["storagePid"])
	pageViewPID, _ := intValue(raw["pageViewPid"])

	pageSize := DefaultPageSize
	if n, ok := intValue(itemsPerPage(raw)); ok {
		pageSize = n
	}

	ids, err := collectionValue(raw["collections"])
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	return New(core, storagePID, pageViewPID, pageSize, ids)
}

// Encode serializes the configuration in the payload shape Parse reads.
func (c Configuration) Encode() ([]byte, error) {
	ids := make([]string, len(c.collectionIDs))
	for i, id := range c.collectionIDs {
		ids[i] = strconv.Itoa(id)
	}

	payload := struct {
		Core        string `json:"solrcore"`
		StoragePID  int    `json:"storagePid"`
		PageViewPID int    `json:"pageViewPid"`
		Paginate    struct {
			ItemsPerPage int `json:"itemsPerPage"`
		} `json:"paginate"`
		Collections string `json:"collections"`
	}{
		Core:        c.coreName,
		StoragePID:  c.storagePID,
		PageViewPID: c.pageViewPID,
		Collections: strings.Join(ids, ","),
	}
	payload.Paginate.ItemsPerPage = c.pageSize

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

// ParseIDList parses a comma-separated integer list, discarding empty,
// non-numeric and non-positive entries.
func ParseIDList(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			continue
		}
		ids = append(ids, n)
	}
	return ids
}

// itemsPerPage supports both {"paginate":{"itemsPerPage":n}} and the flat "paginate.itemsPerPage" key.
func itemsPerPage(raw map[string]any) any {
	if p, ok := raw["paginate"].(map[string]any); ok {
		if v, ok := p["itemsPerPage"]; ok {
			return v
		}
	}
	return raw["paginate.itemsPerPage"]
}

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// intValue accepts JSON numbers and numeric strings. Fractions are truncated.
func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func collectionValue(v any) ([]int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseIDList(t), nil
	case json.Number:
		return ParseIDList(t.String()), nil
	case []any:
		ids := make([]int, 0, len(t))
		for _, item := range t {
			if n, ok := intValue(item); ok && n > 0 {
				ids = append(ids, n)
			}
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("collections must be a comma-separated string")
	}
}
