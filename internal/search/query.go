package search

import (
	"database/sql"
	"fmt"
	"strings"
)

// Hit is one session matching a search query.
type Hit struct {
	SessionID string `json:"sessionId"`
	File      string `json:"file"`
	Matches   int    `json:"matches"`
}

// Search ranks sessions by how many of their transcript entries match the
// query, best first. FTS when available, LIKE otherwise; an FTS syntax
// failure falls back to LIKE rather than erroring.
func (x *Index) Search(query string, limit int) ([]Hit, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	if x.ftsEnabled {
		hits, err := x.searchFTS(query, limit)
		if err == nil {
			return hits, nil
		}
		hits, fbErr := x.searchLike(query, limit)
		if fbErr != nil {
			return nil, fmt.Errorf("search (fts and fallback failed): fts=%w, fallback=%v", err, fbErr)
		}
		return hits, nil
	}
	return x.searchLike(query, limit)
}

func (x *Index) searchFTS(query string, limit int) ([]Hit, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return nil, fmt.Errorf("empty fts query")
	}
	rows, err := x.db.Query(`
		SELECT session_id, file, COUNT(*) AS score
		FROM entries_fts
		WHERE entries_fts MATCH ?
		GROUP BY file
		ORDER BY score DESC
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("fts query failed: %w", err)
	}
	return scanHits(rows)
}

func (x *Index) searchLike(query string, limit int) ([]Hit, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString(`
		SELECT session_id, file, COUNT(*) AS score
		FROM entries
		WHERE `)
	args := make([]any, 0, len(terms)+1)
	for i, term := range terms {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString("LOWER(content) LIKE ?")
		args = append(args, "%"+term+"%")
	}
	b.WriteString(`
		GROUP BY file
		ORDER BY score DESC
		LIMIT ?
	`)
	args = append(args, limit)

	rows, err := x.db.Query(b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("like query failed: %w", err)
	}
	return scanHits(rows)
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	defer rows.Close()
	hits := make([]Hit, 0, 16)
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.SessionID, &h.File, &h.Matches); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return hits, nil
}

func buildFTSQuery(raw string) string {
	terms := tokenize(raw)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, "")
		if term == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf(`"%s"*`, term))
	}
	return strings.Join(quoted, " AND ")
}

func tokenize(raw string) []string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "`\"'.,:;!?()[]{}<>|")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
