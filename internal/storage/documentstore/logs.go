package documentstore

import (
	"context"

	"github.com/rohmanhakim/search-engine-core/internal/sitemodel"
)

// InsertCrawlLog appends one crawl-attempt record. created_at always takes
// the database default; entry.CreatedAt is not written.
func (s *Store) InsertCrawlLog(ctx context.Context, entry sitemodel.CrawlLog) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO crawl_logs (session_id, url, domain, status, http_status, duration_ms, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, entry.SessionID, entry.URL, entry.Domain, string(entry.Status), entry.HTTPStatus, entry.DurationMs, entry.Message).Scan(&id)
	return id, err
}

func (s *Store) ListCrawlLogsBySession(ctx context.Context, sessionID string, limit int) ([]sitemodel.CrawlLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, url, domain, status, http_status, duration_ms, message, created_at
		FROM crawl_logs WHERE session_id = $1 ORDER BY id DESC LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []sitemodel.CrawlLog
	for rows.Next() {
		var e sitemodel.CrawlLog
		var status string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.URL, &e.Domain, &status, &e.HTTPStatus, &e.DurationMs, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = sitemodel.CrawlStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertAPIRequestLog appends one inbound-search-request record.
func (s *Store) InsertAPIRequestLog(ctx context.Context, entry sitemodel.ApiRequestLog) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO api_request_logs (path, query, status_code, duration_ms, remote_addr)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, entry.Path, entry.Query, entry.StatusCode, entry.DurationMs, entry.RemoteAddr).Scan(&id)
	return id, err
}
