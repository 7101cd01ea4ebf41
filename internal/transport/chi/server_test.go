package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/dlf/internal/domain"
	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	feeduc "github.com/kailas-cloud/dlf/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

// --- Fakes ---

type fakeSearcher struct {
	fn    func(ctx context.Context, q url.Values) (searchuc.Response, error)
	calls int
}

func (f *fakeSearcher) Search(ctx context.Context, q url.Values) (searchuc.Response, error) {
	f.calls++
	return f.fn(ctx, q)
}

type fakeFeeds struct {
	fn func(ctx context.Context, req feeduc.Request) (domfeed.Feed, error)
}

func (f *fakeFeeds) Build(ctx context.Context, req feeduc.Request) (domfeed.Feed, error) {
	return f.fn(ctx, req)
}

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(_ context.Context) healthuc.Report { return f.report }

func healthy() *fakeHealth {
	return &fakeHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentSearch: healthuc.CheckOK},
	}}
}

func newTestRouter(t *testing.T, s searcher, f feedBuilder, h healthChecker, opts Options) http.Handler {
	t.Helper()
	srv := NewServer(s, f, h, zap.NewNop())
	r := chi.NewRouter()
	srv.Mount(r, opts)
	return r
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sampleResponse() searchuc.Response {
	return searchuc.Response{
		Page: result.NewPage(0, 10, 1),
		Set: result.Set{
			NumberOfToplevels: 1,
			NumHits:           2,
			Documents: []result.DocumentHit{{
				UID: 12,
				Display: result.Display{
					Title:      "Faust",
					Thumbnail:  "https://img.example.org/12.jpg",
					Structure:  "monograph",
					OrderLabel: "I",
					Metadata:   map[string][]string{"author": {"Goethe"}},
				},
				PageLink: "https://digital.example.org/werkansicht?id=7&tx_dlf%5Bid%5D=12",
				SearchResults: []result.PageHit{{
					UID:           12,
					Page:          3,
					HighlightWord: "gretchen",
					PageLink:      "https://digital.example.org/werkansicht?id=7&tx_dlf%5Bid%5D=12&tx_dlf%5Bpage%5D=3",
				}},
			}},
		},
	}
}

// --- Search ---

func TestSearch_OK(t *testing.T) {
	var got url.Values
	s := &fakeSearcher{fn: func(_ context.Context, q url.Values) (searchuc.Response, error) {
		got = q
		return sampleResponse(), nil
	}}
	h := newTestRouter(t, s, nil, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/api/search?settings=tok&term=faust&page=0")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got.Get("settings") != "tok" || got.Get("term") != "faust" {
		t.Errorf("query not forwarded: %v", got)
	}

	var body struct {
		Params struct {
			PageSize int `json:"pageSize"`
			First    int `json:"first"`
			Last     int `json:"last"`
		} `json:"params"`
		NumberOfToplevels int                          `json:"numberOfToplevels"`
		NumHits           int                          `json:"numHits"`
		Documents         []map[string]json.RawMessage `json:"documents"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Params.PageSize != 10 || body.Params.First != 1 || body.Params.Last != 1 {
		t.Errorf("params = %+v", body.Params)
	}
	if body.NumberOfToplevels != 1 || body.NumHits != 2 {
		t.Errorf("counts = %d/%d", body.NumberOfToplevels, body.NumHits)
	}
	if len(body.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(body.Documents))
	}

	doc := body.Documents[0]
	for _, key := range []string{"uid", "title", "thumbnail", "metadata", "structure", "metsOrderlabel", "pageLink", "searchResults"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}
	if _, ok := doc["children"]; ok {
		t.Error("empty children must be omitted")
	}

	var hits []map[string]any
	if err := json.Unmarshal(doc["searchResults"], &hits); err != nil {
		t.Fatalf("decode searchResults: %v", err)
	}
	if hits[0]["highlight_word"] != "gretchen" || hits[0]["page"] != float64(3) {
		t.Errorf("page hit = %v", hits[0])
	}
	if md, ok := hits[0]["metadata"].(map[string]any); !ok || len(md) != 0 {
		t.Errorf("page hit metadata = %v, want {}", hits[0]["metadata"])
	}
	if !strings.Contains(string(doc["pageLink"]), "tx_dlf%5Bid%5D=12") {
		t.Errorf("pageLink = %s", doc["pageLink"])
	}
	if !strings.Contains(hits[0]["pageLink"].(string), "tx_dlf%5Bpage%5D=3") {
		t.Errorf("page hit link = %v", hits[0]["pageLink"])
	}
}

func TestSearch_EmptyDocumentsIsArray(t *testing.T) {
	s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
		return searchuc.Response{Page: result.NewPage(50, 10, 0), Set: result.Set{Documents: []result.DocumentHit{}}}, nil
	}}
	h := newTestRouter(t, s, nil, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/api/search?settings=tok&page=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"documents":[]`) {
		t.Errorf("body = %s, want documents []", rr.Body)
	}
	if !strings.Contains(rr.Body.String(), `"first":51,"last":50`) {
		t.Errorf("body = %s, want first 51 last 50", rr.Body)
	}
}

func TestRoot_EIDRoutesToSearch(t *testing.T) {
	s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
		return sampleResponse(), nil
	}}
	h := newTestRouter(t, s, nil, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/?eID=tx_dlf_search&settings=tok")
	if rr.Code != http.StatusOK {
		t.Errorf("eID search: status = %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/?eID=other")
	if rr.Code != http.StatusNotFound {
		t.Errorf("foreign eID: status = %d, want 404", rr.Code)
	}
	if s.calls != 1 {
		t.Errorf("search calls = %d, want 1", s.calls)
	}
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
		t.Fatal("search must not run for non-GET")
		return searchuc.Response{}, nil
	}}
	h := newTestRouter(t, s, nil, healthy(), Options{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		for _, target := range []string{"/api/search", "/?eID=tx_dlf_search"} {
			rr := do(t, h, method, target)
			if rr.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s %s: status = %d, want 405", method, target, rr.Code)
			}
			if rr.Body.Len() != 0 {
				t.Errorf("%s %s: body = %q, want empty", method, target, rr.Body)
			}
			if allow := rr.Header().Get("Allow"); allow != http.MethodGet {
				t.Errorf("%s %s: Allow = %q", method, target, allow)
			}
		}
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	backend := &domain.SearchError{
		Stage: "search", Core: "core1", StoragePID: 5, Term: "secret-term", Page: 2, Mode: "metadata",
		Err: fmt.Errorf("%w: connection refused", domain.ErrBackend),
	}
	links := &domain.SearchError{
		Stage: "links", Core: "core1", StoragePID: 5, Term: "faust",
		Err: fmt.Errorf("%w: bad base", domain.ErrLinkBuild),
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"decode", fmt.Errorf("open settings: %w", domain.ErrDecode), http.StatusBadRequest, "Could not decode settings"},
		{"validation", fmt.Errorf("parse settings: %w", domain.ErrValidation), http.StatusBadRequest, "Invalid settings"},
		{"backend", backend, http.StatusBadGateway, "Search failed"},
		{"link build", links, http.StatusInternalServerError, "Search failed"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
				return searchuc.Response{}, tt.err
			}}
			h := newTestRouter(t, s, nil, healthy(), Options{})

			rr := do(t, h, http.MethodGet, "/api/search?settings=garbage")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMsg)
			}
			if _, ok := body["documents"]; ok {
				t.Error("error response must not carry documents")
			}
			for _, leak := range []string{"garbage", "secret-term", "connection refused"} {
				if strings.Contains(rr.Body.String(), leak) {
					t.Errorf("body leaks %q: %s", leak, rr.Body)
				}
			}
		})
	}
}

func TestSearch_BackendErrorLogsContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
		return searchuc.Response{}, &domain.SearchError{
			Stage: "search", Core: "core1", StoragePID: 5, Term: "faust", Page: 3, Mode: "fulltext",
			Err: domain.ErrBackend,
		}
	}}
	srv := NewServer(s, nil, healthy(), zap.New(core))
	r := chi.NewRouter()
	srv.Mount(r, Options{})

	do(t, r, http.MethodGet, "/api/search?settings=tok")

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d failures, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["core"] != "core1" || ctx["term"] != "faust" || ctx["mode"] != "fulltext" {
		t.Errorf("log context = %v", ctx)
	}
	if ctx["storage_pid"] != int64(5) || ctx["page"] != int64(3) {
		t.Errorf("log context = %v", ctx)
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
}

// --- Feeds ---

func TestFeed_OK(t *testing.T) {
	var got feeduc.Request
	f := &fakeFeeds{fn: func(_ context.Context, req feeduc.Request) (domfeed.Feed, error) {
		got = req
		return domfeed.Feed{
			Title:     "Neuzugänge",
			Link:      "https://slub.example.org",
			Copyright: "SLUB",
			Items: []domfeed.Item{{
				Title:   "Neu: Faust",
				Link:    "https://digital.example.org/werkansicht?id=7&tx_dlf%5Bid%5D=12",
				GUID:    "oai:de:slub-dresden:db:id-1",
				PubDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			}},
		}, nil
	}}
	h := newTestRouter(t, nil, f, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/feeds/3?collection=4,5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if got.Library != 3 || got.Collections != "4,5" {
		t.Errorf("request = %+v", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != rssContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`<rss version="2.0">`,
		"<copyright>SLUB</copyright>",
		"<title>Neu: Faust</title>",
		"tx_dlf%5Bid%5D=12",
		"<pubDate>Fri, 01 Mar 2024 12:00:00 +0000</pubDate>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q:\n%s", want, body)
		}
	}
}

func TestFeed_NotFound(t *testing.T) {
	f := &fakeFeeds{fn: func(context.Context, feeduc.Request) (domfeed.Feed, error) {
		return domfeed.Feed{}, fmt.Errorf("feed for library 9: %w", domain.ErrNotFound)
	}}
	h := newTestRouter(t, nil, f, healthy(), Options{})

	for _, target := range []string{"/feeds/9", "/feeds/abc", "/feeds/0"} {
		rr := do(t, h, http.MethodGet, target)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rr.Code)
		}
	}
}

func TestFeed_NoFeedsConfigured(t *testing.T) {
	h := newTestRouter(t, nil, nil, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/feeds/1")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// --- Operational endpoints ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     healthuc.Status
		wantStatus int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusServiceUnavailable},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &fakeHealth{report: healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{healthuc.ComponentCatalog: healthuc.CheckOK},
			}}
			h := newTestRouter(t, nil, nil, hc, Options{})

			rr := do(t, h, http.MethodGet, "/health")
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body healthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tt.status) || body.Checks[healthuc.ComponentCatalog] != "ok" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestMetrics_BearerAuth(t *testing.T) {
	h := newTestRouter(t, nil, nil, healthy(), Options{MetricsTokens: []string{"scrape"}})

	if rr := do(t, h, http.MethodGet, "/metrics"); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	req.Header.Set("Authorization", "Bearer scrape")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", rr.Code)
	}
}

func TestHealth_NotRateLimited(t *testing.T) {
	s := &fakeSearcher{fn: func(context.Context, url.Values) (searchuc.Response, error) {
		return sampleResponse(), nil
	}}
	h := newTestRouter(t, s, nil, healthy(), Options{Limiter: NewRateLimiter(1, 1)})

	if rr := do(t, h, http.MethodGet, "/api/search?settings=tok"); rr.Code != http.StatusOK {
		t.Fatalf("first search: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/search?settings=tok"); rr.Code != http.StatusTooManyRequests {
		t.Errorf("second search: status = %d, want 429", rr.Code)
	}
	for range 3 {
		if rr := do(t, h, http.MethodGet, "/health"); rr.Code != http.StatusOK {
			t.Errorf("health: status = %d, want 200", rr.Code)
		}
	}
}

func TestUnknownRoute_404(t *testing.T) {
	h := newTestRouter(t, nil, nil, healthy(), Options{})

	rr := do(t, h, http.MethodGet, "/typo3/index.php")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
