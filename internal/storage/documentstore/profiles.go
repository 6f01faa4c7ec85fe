package documentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rohmanhakim/search-engine-core/internal/sitemodel"
)

// ErrNotFound is returned by the single-row getters when no SiteProfile
// matches.
var ErrNotFound = errors.New("documentstore: not found")

const profileColumns = `
	id, url, domain, title, description, keywords, language, category,
	last_crawl_time, first_crawl_time, last_crawl_status, last_error_message,
	crawl_count, crawl_interval_hours, user_agent, http_status_code,
	content_size, content_type, crawl_duration_ms,
	page_rank, content_quality, word_count, is_mobile, has_ssl,
	outbound_links, inbound_link_count,
	is_indexed, last_modified, indexed_at,
	author, publisher, publish_date
`

func scanProfile(row pgx.Row) (sitemodel.SiteProfile, error) {
	var p sitemodel.SiteProfile
	var status string
	err := row.Scan(
		&p.ID, &p.URL, &p.Domain, &p.Title, &p.Description, &p.Keywords, &p.Language, &p.Category,
		&p.Crawl.LastCrawlTime, &p.Crawl.FirstCrawlTime, &status, &p.Crawl.LastErrorMessage,
		&p.Crawl.CrawlCount, &p.Crawl.CrawlIntervalHours, &p.Crawl.UserAgent, &p.Crawl.HTTPStatusCode,
		&p.Crawl.ContentSize, &p.Crawl.ContentType, &p.Crawl.CrawlDurationMs,
		&p.PageRank, &p.ContentQuality, &p.WordCount, &p.IsMobile, &p.HasSSL,
		&p.OutboundLinks, &p.InboundLinkCount,
		&p.IsIndexed, &p.LastModified, &p.IndexedAt,
		&p.Author, &p.Publisher, &p.PublishDate,
	)
	if err != nil {
		return sitemodel.SiteProfile{}, err
	}
	p.Crawl.LastCrawlStatus = sitemodel.CrawlStatus(status)
	return p, nil
}

// Store inserts profile, or updates it in place if its URL already
// exists (ON CONFLICT upsert), returning the row's ID.
func (s *Store) Store(ctx context.Context, p sitemodel.SiteProfile) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO site_profiles (
			url, domain, title, description, keywords, language, category,
			last_crawl_time, first_crawl_time, last_crawl_status, last_error_message,
			crawl_count, crawl_interval_hours, user_agent, http_status_code,
			content_size, content_type, crawl_duration_ms,
			page_rank, content_quality, word_count, is_mobile, has_ssl,
			outbound_links, inbound_link_count,
			is_indexed, last_modified, indexed_at,
			author, publisher, publish_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21, $22, $23,
			$24, $25,
			$26, $27, $28,
			$29, $30, $31
		)
		ON CONFLICT (url) DO UPDATE SET
			domain = EXCLUDED.domain,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			keywords = EXCLUDED.keywords,
			language = EXCLUDED.language,
			category = EXCLUDED.category,
			last_crawl_time = EXCLUDED.last_crawl_time,
			last_crawl_status = EXCLUDED.last_crawl_status,
			last_error_message = EXCLUDED.last_error_message,
			crawl_count = EXCLUDED.crawl_count,
			crawl_interval_hours = EXCLUDED.crawl_interval_hours,
			user_agent = EXCLUDED.user_agent,
			http_status_code = EXCLUDED.http_status_code,
			content_size = EXCLUDED.content_size,
			content_type = EXCLUDED.content_type,
			crawl_duration_ms = EXCLUDED.crawl_duration_ms,
			page_rank = EXCLUDED.page_rank,
			content_quality = EXCLUDED.content_quality,
			word_count = EXCLUDED.word_count,
			is_mobile = EXCLUDED.is_mobile,
			has_ssl = EXCLUDED.has_ssl,
			outbound_links = EXCLUDED.outbound_links,
			inbound_link_count = EXCLUDED.inbound_link_count,
			is_indexed = EXCLUDED.is_indexed,
			last_modified = EXCLUDED.last_modified,
			indexed_at = EXCLUDED.indexed_at,
			author = EXCLUDED.author,
			publisher = EXCLUDED.publisher,
			publish_date = EXCLUDED.publish_date
		RETURNING id
	`,
		p.URL, p.Domain, p.Title, p.Description, p.Keywords, p.Language, p.Category,
		nullableTime(p.Crawl.LastCrawlTime), nullableTime(p.Crawl.FirstCrawlTime), string(p.Crawl.LastCrawlStatus), p.Crawl.LastErrorMessage,
		p.Crawl.CrawlCount, p.Crawl.CrawlIntervalHours, p.Crawl.UserAgent, p.Crawl.HTTPStatusCode,
		p.Crawl.ContentSize, p.Crawl.ContentType, p.Crawl.CrawlDurationMs,
		p.PageRank, p.ContentQuality, p.WordCount, p.IsMobile, p.HasSSL,
		p.OutboundLinks, p.InboundLinkCount,
		p.IsIndexed, nullableTime(p.LastModified), nullableTime(p.IndexedAt),
		p.Author, p.Publisher, nullableTime(p.PublishDate),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store site profile: %w", err)
	}
	return id, nil
}

func (s *Store) GetByURL(ctx context.Context, url string) (sitemodel.SiteProfile, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM site_profiles WHERE url = $1", url)
	p, err := scanProfile(row)
	if err != nil {
		return sitemodel.SiteProfile{}, wrapNotFound(err)
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (sitemodel.SiteProfile, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM site_profiles WHERE id = $1", id)
	p, err := scanProfile(row)
	if err != nil {
		return sitemodel.SiteProfile{}, wrapNotFound(err)
	}
	return p, nil
}

func (s *Store) GetByDomain(ctx context.Context, domain string, limit, offset int) ([]sitemodel.SiteProfile, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+profileColumns+" FROM site_profiles WHERE domain = $1 ORDER BY id LIMIT $2 OFFSET $3",
		domain, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (s *Store) GetByCrawlStatus(ctx context.Context, status sitemodel.CrawlStatus, limit, offset int) ([]sitemodel.SiteProfile, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+profileColumns+" FROM site_profiles WHERE last_crawl_status = $1 ORDER BY id LIMIT $2 OFFSET $3",
		string(status), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]sitemodel.SiteProfile, error) {
	var profiles []sitemodel.SiteProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM site_profiles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM site_profiles").Scan(&count)
	return count, err
}

func (s *Store) CountByStatus(ctx context.Context, status sitemodel.CrawlStatus) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM site_profiles WHERE last_crawl_status = $1", string(status)).Scan(&count)
	return count, err
}

// EnsureIndexes is idempotent; the indexes are created by migrations,
// this only exists so callers (and tests) can assert the expected
// indexes are present without re-running Migrate.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_site_profiles_domain ON site_profiles (domain);
		CREATE INDEX IF NOT EXISTS idx_site_profiles_last_crawl_status ON site_profiles (last_crawl_status);
	`)
	return err
}

func wrapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullableTime(t interface{ IsZero() bool }) any {
	if t.IsZero() {
		return nil
	}
	return t
}
