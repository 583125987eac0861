package content

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"meraki/internal/adapters/storage"
	domain "meraki/internal/domain/content"
)

// SQLiteBlogStore implements BlogStore using SQLite.
type SQLiteBlogStore struct {
	db storage.SQLDB
}

// NewSQLiteBlogStore creates a new blog post store.
func NewSQLiteBlogStore(db storage.SQLDB) *SQLiteBlogStore {
	return &SQLiteBlogStore{db: db}
}

const selectPost = `SELECT id, title, content, author, published, created_at FROM blog_post`

// List returns posts newest first.
// POST: drafts are omitted when publishedOnly is set
func (s *SQLiteBlogStore) List(ctx context.Context, publishedOnly bool) ([]domain.BlogPost, error) {
	query := selectPost
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.BlogPost
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID retrieves a post by id.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteBlogStore) GetByID(ctx context.Context, id string) (domain.BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, selectPost+` WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return domain.BlogPost{}, fmt.Errorf("blog post not found: %w", err)
	}
	return p, err
}

// Save inserts or replaces a post.
// PRE: p has been validated
func (s *SQLiteBlogStore) Save(ctx context.Context, p domain.BlogPost) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blog_post (id, title, content, author, published, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, content=excluded.content,
		   author=excluded.author, published=excluded.published`,
		p.ID, p.Title, p.Content, p.Author, p.Published, p.CreatedAt.UTC().Format(storage.DateLayout))
	return err
}

// Count returns the number of posts, drafts included.
func (s *SQLiteBlogStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "blog_post")
}

func scanPost(scan func(dest ...any) error) (domain.BlogPost, error) {
	var p domain.BlogPost
	var createdAt string
	if err := scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.Published, &createdAt); err != nil {
		return domain.BlogPost{}, err
	}
	p.CreatedAt, _ = time.Parse(storage.DateLayout, createdAt)
	return p, nil
}

// SQLiteSpeakerStore implements SpeakerStore using SQLite.
type SQLiteSpeakerStore struct {
	db storage.SQLDB
}

// NewSQLiteSpeakerStore creates a new speaker store.
func NewSQLiteSpeakerStore(db storage.SQLDB) *SQLiteSpeakerStore {
	return &SQLiteSpeakerStore{db: db}
}

const selectSpeaker = `SELECT id, name, bio, image_url, event_id FROM speaker`

// List returns speakers by name.
func (s *SQLiteSpeakerStore) List(ctx context.Context) ([]domain.Speaker, error) {
	rows, err := s.db.QueryContext(ctx, selectSpeaker+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Speaker
	for rows.Next() {
		var sp domain.Speaker
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Bio, &sp.ImageURL, &sp.EventID); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// GetByID retrieves a speaker by id.
// POST: Returns the entity or an error if not found
func (s *SQLiteSpeakerStore) GetByID(ctx context.Context, id string) (domain.Speaker, error) {
	var sp domain.Speaker
	err := s.db.QueryRowContext(ctx, selectSpeaker+` WHERE id = ?`, id).
		Scan(&sp.ID, &sp.Name, &sp.Bio, &sp.ImageURL, &sp.EventID)
	if err == sql.ErrNoRows {
		return domain.Speaker{}, fmt.Errorf("speaker not found: %w", err)
	}
	return sp, err
}

// Save inserts or replaces a speaker.
func (s *SQLiteSpeakerStore) Save(ctx context.Context, sp domain.Speaker) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO speaker (id, name, bio, image_url, event_id) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, bio=excluded.bio,
		   image_url=excluded.image_url, event_id=excluded.event_id`,
		sp.ID, sp.Name, sp.Bio, sp.ImageURL, sp.EventID)
	return err
}

// Count returns the number of speakers.
func (s *SQLiteSpeakerStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "speaker")
}

// SQLiteSponsorStore implements SponsorStore using SQLite.
type SQLiteSponsorStore struct {
	db storage.SQLDB
}

// NewSQLiteSponsorStore creates a new sponsor store.
func NewSQLiteSponsorStore(db storage.SQLDB) *SQLiteSponsorStore {
	return &SQLiteSponsorStore{db: db}
}

const selectSponsor = `SELECT id, name, tier, logo_url, website FROM sponsor`

// List returns sponsors by tier rank, then name.
func (s *SQLiteSponsorStore) List(ctx context.Context) ([]domain.Sponsor, error) {
	rows, err := s.db.QueryContext(ctx, selectSponsor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Sponsor
	for rows.Next() {
		var sp domain.Sponsor
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Tier, &sp.LogoURL, &sp.Website); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := domain.TierRank[out[i].Tier], domain.TierRank[out[j].Tier]
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetByID retrieves a sponsor by id.
// POST: Returns the entity or an error if not found
func (s *SQLiteSponsorStore) GetByID(ctx context.Context, id string) (domain.Sponsor, error) {
	var sp domain.Sponsor
	err := s.db.QueryRowContext(ctx, selectSponsor+` WHERE id = ?`, id).
		Scan(&sp.ID, &sp.Name, &sp.Tier, &sp.LogoURL, &sp.Website)
	if err == sql.ErrNoRows {
		return domain.Sponsor{}, fmt.Errorf("sponsor not found: %w", err)
	}
	return sp, err
}

// Save inserts or replaces a sponsor.
func (s *SQLiteSponsorStore) Save(ctx context.Context, sp domain.Sponsor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sponsor (id, name, tier, logo_url, website) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, tier=excluded.tier,
		   logo_url=excluded.logo_url, website=excluded.website`,
		sp.ID, sp.Name, sp.Tier, sp.LogoURL, sp.Website)
	return err
}

// Count returns the number of sponsors.
func (s *SQLiteSponsorStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "sponsor")
}

// count is only called with the fixed table names above.
func count(ctx context.Context, db storage.SQLDB, table string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}
