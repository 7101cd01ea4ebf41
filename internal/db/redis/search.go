package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/dlf/internal/db"
	"github.com/kailas-cloud/dlf/internal/domain/search/filter"
)

// MaxSearchResults is the Query Engine default for MAXSEARCHRESULTS.
// Windows reaching past it are trimmed, and a window starting past it only counts.
const MaxSearchResults = 1_000_000

// Search runs a filtered, paginated FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	cmd, err := s.searchCmd(q)
	if err != nil {
		return nil, err
	}

	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Target: q.IndexName, Err: err}
	}

	return parseListResult(raw)
}

// SearchMulti runs several FT.SEARCH commands in a single DoMulti round-trip.
// Results are returned in query order; any failing query fails the batch.
func (s *Store) SearchMulti(ctx context.Context, qs []*db.Query) ([]*db.SearchResult, error) {
	if len(qs) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(qs))
	for i, q := range qs {
		cmd, err := s.searchCmd(q)
		if err != nil {
			return nil, err
		}
		cmds[i] = cmd
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]*db.SearchResult, len(results))
	for i, res := range results {
		raw, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Target: qs[i].IndexName, Err: err}
		}
		parsed, err := parseListResult(raw)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

func (s *Store) searchCmd(q *db.Query) (rueidis.Completed, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return rueidis.Completed{}, err
	}
	return s.b().Arbitrary("FT.SEARCH").Args(args...).Build(), nil
}

func buildSearchArgs(q *db.Query) ([]string, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, errors.New("offset and limit must not be negative")
	}

	args := []string{q.IndexName, buildQueryString(q)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}

	offset, limit := limitWindow(q.Offset, q.Limit)
	args = append(args,
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	)
	return args, nil
}

func limitWindow(offset, limit int) (int, int) {
	if offset >= MaxSearchResults {
		return 0, 0
	}
	return offset, min(limit, MaxSearchResults-offset)
}

// buildQueryString combines the pre-filter with the text clause; an empty query matches all.
func buildQueryString(q *db.Query) string {
	var parts []string
	if f := buildFilter(q.Filters); f != "" {
		parts = append(parts, f)
	}
	if t := buildTextClause(q.TextField, q.Text); t != "" {
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildTextClause turns a free-text term into an intersection of escaped terms.
// A trailing '*' on a term of at least two characters is kept as a prefix query.
func buildTextClause(field, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || text == "*" {
		return ""
	}

	tokens := strings.Fields(text)
	escaped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stem, ok := strings.CutSuffix(tok, "*"); ok && len([]rune(stem)) >= 2 && !strings.HasSuffix(stem, "*") {
			escaped = append(escaped, escapeQuery(stem)+"*")
			continue
		}
		escaped = append(escaped, escapeQuery(tok))
	}

	if field == "" {
		return "(" + strings.Join(escaped, " ") + ")"
	}
	return fmt.Sprintf("@%s:(%s)", field, strings.Join(escaped, " "))
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string

	for _, cond := range expr.Must() {
		parts = append(parts, buildCondition(cond))
	}

	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildCondition(cond))
	}

	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	switch cond.Kind() {
	case filter.KindTag:
		return buildTagFilter(cond.Key(), cond.Values())
	case filter.KindRange:
		return buildNumericFilter(cond.Key(), cond.Min(), cond.Max())
	default:
		return ""
	}
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, lo, hi float64) string {
	return fmt.Sprintf("@%s:[%s %s]", key,
		strconv.FormatFloat(lo, 'f', -1, 64),
		strconv.FormatFloat(hi, 'f', -1, 64))
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
