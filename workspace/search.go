package workspace

import (
	"bufio"
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Match is one file the searcher considers relevant.
type Match struct {
	Path  string   `json:"path"`
	Score int      `json:"score"`
	Lines []string `json:"lines,omitempty"`
}

// Searcher ranks workspace files by how many query terms they contain.
type Searcher struct {
	reader     *Reader
	maxResults int
	maxLines   int
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithMaxResults limits the number of files returned. Default is 20.
func WithMaxResults(n int) SearchOption {
	return func(s *Searcher) {
		s.maxResults = n
	}
}

// NewSearcher creates a searcher over the reader's files.
func NewSearcher(r *Reader, opts ...SearchOption) *Searcher {
	s := &Searcher{reader: r, maxResults: 20, maxLines: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns files matching terms of query, best first. A file's score
// is the number of distinct terms it contains, ties broken by total hits
// then path. Terms also match the file path.
func (s *Searcher) Search(ctx context.Context, query string) ([]Match, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))

	files, err := s.reader.Files(".")
	if err != nil {
		return nil, err
	}

	type scored struct {
		Match
		hits int
	}
	var results []scored
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		hits := 0
		for _, m := range re.FindAllString(path, -1) {
			seen[strings.ToLower(m)] = true
			hits++
		}
		lines := s.scan(path, re, seen, &hits)
		if len(seen) == 0 {
			continue
		}
		results = append(results, scored{Match: Match{Path: path, Score: len(seen), Lines: lines}, hits: hits})
	}

	slices.SortFunc(results, func(a, b scored) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if a.hits != b.hits {
			return b.hits - a.hits
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = r.Match
	}
	return out, nil
}

func (s *Searcher) scan(path string, re *regexp.Regexp, seen map[string]bool, hits *int) []string {
	f, err := s.reader.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		found := re.FindAllString(line, -1)
		if len(found) == 0 {
			continue
		}
		for _, m := range found {
			seen[strings.ToLower(m)] = true
		}
		*hits += len(found)
		if len(lines) < s.maxLines {
			line = strings.TrimSpace(line)
			if len(line) > 200 {
				line = line[:200] + "..."
			}
			lines = append(lines, line)
		}
	}
	return lines
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "for": true, "on": true, "with": true,
	"how": true, "what": true, "where": true, "does": true, "do": true, "i": true,
	"it": true, "this": true, "that": true, "be": true, "are": true, "can": true,
}

// Terms splits a query into distinct lowercase search terms, dropping stop
// words and single characters.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	var terms []string
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] || slices.Contains(terms, f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
