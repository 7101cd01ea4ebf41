package request

import (
	"math"
	"net/url"
	"reflect"
	"testing"

	"github.com/kailas-cloud/dlf/internal/domain/search/mode"
	"github.com/kailas-cloud/dlf/internal/domain/settings"
)

func testConfig(t *testing.T, pageSize int, collections ...int) settings.Configuration {
	t.Helper()
	cfg, err := settings.New("core1", 5, 7, pageSize, collections)
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	return cfg
}

func query(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery(%q): %v", raw, err)
	}
	return q
}

func TestFromQuery_Scenario(t *testing.T) {
	r := FromQuery(query(t, "term=Goethe&page=0"), testConfig(t, 10))

	if r.Term() != "Goethe" {
		t.Errorf("Term() = %q", r.Term())
	}
	if r.Offset() != 0 || r.Limit() != 10 {
		t.Errorf("Offset/Limit = %d/%d, want 0/10", r.Offset(), r.Limit())
	}
	if r.Sort() != nil {
		t.Errorf("Sort() = %+v, want nil", r.Sort())
	}
	if r.Mode() != mode.Metadata {
		t.Errorf("Mode() = %q", r.Mode())
	}
}

func TestFromQuery_Defaults(t *testing.T) {
	r := FromQuery(url.Values{}, testConfig(t, 25))
	if r.Term() != DefaultTerm {
		t.Errorf("Term() = %q, want %q", r.Term(), DefaultTerm)
	}
	if r.Page() != 0 {
		t.Errorf("Page() = %d", r.Page())
	}

	empty := FromQuery(query(t, "term="), testConfig(t, 25))
	if empty.Term() != "" {
		t.Errorf("explicit empty term = %q, want empty", empty.Term())
	}
}

func TestFromQuery_Page(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"page=3", 3},
		{"page=-2", 0},
		{"page=abc", 0},
		{"page=", 0},
		{"page=%202%20", 2},
	}
	for _, tt := range tests {
		r := FromQuery(query(t, tt.raw), testConfig(t, 10))
		if r.Page() != tt.want {
			t.Errorf("%s: Page() = %d, want %d", tt.raw, r.Page(), tt.want)
		}
		if r.Offset() != tt.want*10 {
			t.Errorf("%s: Offset() = %d", tt.raw, r.Offset())
		}
	}
}

func TestFromQuery_HugePage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		pageSize int
	}{
		{"overflowing product", "page=4611686018427387904", 2},
		{"max int", "page=9223372036854775807", 25},
		{"beyond int", "page=99999999999999999999", 10},
		{"page size one", "page=9223372036854775807", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromQuery(query(t, tt.raw), testConfig(t, tt.pageSize))
			off := r.Offset()
			if off < 0 {
				t.Fatalf("Offset() = %d, want non-negative", off)
			}
			if off > math.MaxInt-r.PageSize() {
				t.Errorf("Offset() = %d leaves no room for a full page", off)
			}
			if off != r.Page()*r.PageSize() {
				t.Errorf("Offset() = %d, want Page()*PageSize() = %d", off, r.Page()*r.PageSize())
			}
		})
	}
}

func TestFromQuery_Sort(t *testing.T) {
	tests := []struct {
		raw  string
		want *Sort
	}{
		{"orderBy=title", &Sort{Field: "title", Direction: Asc}},
		{"orderBy=title&order=asc", &Sort{Field: "title", Direction: Asc}},
		{"orderBy=year&order=desc", &Sort{Field: "year", Direction: Desc}},
		{"orderBy=title&order=DESC", nil},
		{"orderBy=title&order=sideways", nil},
		{"orderBy=title&order=", nil},
		{"order=desc", nil},
		{"orderBy=&order=asc", nil},
		{"orderBy=ti%20tle&order=asc", nil},
		{"orderBy=title)%20|%20@x&order=asc", nil},
	}
	for _, tt := range tests {
		r := FromQuery(query(t, tt.raw), testConfig(t, 10))
		if !reflect.DeepEqual(r.Sort(), tt.want) {
			t.Errorf("%s: Sort() = %+v, want %+v", tt.raw, r.Sort(), tt.want)
		}
	}
}

func TestFromQuery_Fulltext(t *testing.T) {
	fulltext := []string{"1", "01", "1.0", " 1", "1e0"}
	for _, v := range fulltext {
		r := FromQuery(url.Values{ParamFulltext: {v}}, testConfig(t, 10))
		if r.Mode() != mode.Fulltext {
			t.Errorf("fulltext=%q: Mode() = %q, want fulltext", v, r.Mode())
		}
	}

	metadata := []string{"", "0", "true", "yes", "2", "1abc", "0x1"}
	for _, v := range metadata {
		r := FromQuery(url.Values{ParamFulltext: {v}}, testConfig(t, 10))
		if r.Mode() != mode.Metadata {
			t.Errorf("fulltext=%q: Mode() = %q, want metadata", v, r.Mode())
		}
	}

	if r := FromQuery(url.Values{}, testConfig(t, 10)); r.Mode() != mode.Metadata {
		t.Errorf("absent fulltext: Mode() = %q", r.Mode())
	}
}

func TestFromQuery_Collections(t *testing.T) {
	r := FromQuery(url.Values{}, testConfig(t, 10, 4, 0, 9))
	if want := []int{4, 9}; !reflect.DeepEqual(r.CollectionIDs(), want) {
		t.Errorf("CollectionIDs() = %v, want %v", r.CollectionIDs(), want)
	}
}
