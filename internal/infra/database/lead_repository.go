package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/atlasai/outbound/internal/entity"
	"github.com/atlasai/outbound/internal/usecase"
)

const leadColumns = `id, name, email, company, position, industry, location,
	linkedin_url, company_website, phone, employees, buying_signals, notes,
	source, score, status, response_status, found_at, last_contacted`

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Company, lead.Position,
		lead.Industry, lead.Location, lead.LinkedInURL, lead.CompanyWebsite,
		lead.Phone, lead.Employees, lead.BuyingSignals, lead.Notes,
		lead.Source, lead.Score, lead.Status, lead.ResponseStatus,
		lead.FoundAt, lead.LastContacted,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return usecase.ErrDuplicateLead
		}
		return err
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *LeadRepository) Unscored(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE status = $1 ORDER BY found_at`
	return r.scanMany(ctx, query, entity.LeadStatusNew)
}

func (r *LeadRepository) TopLeads(ctx context.Context, limit, minScore int) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE status IN ($1, $2) AND score >= $3
		ORDER BY score DESC, found_at
		LIMIT $4`
	return r.scanMany(ctx, query, entity.LeadStatusNew, entity.LeadStatusScored, minScore, limit)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int) error {
	query := `UPDATE leads SET score = $2, status = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, score, entity.LeadStatusScored)
	return err
}

// MarkContacted updates last_contacted but never downgrades an engaged or
// invalid lead back to contacted.
func (r *LeadRepository) MarkContacted(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE leads
		SET last_contacted = $2,
		    status = CASE WHEN status IN ('engaged', 'invalid') THEN status ELSE 'contacted' END
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

// MarkOpened only advances response_status from none. Later signals
// (clicked, replied) are never overwritten by a late-arriving open.
func (r *LeadRepository) MarkOpened(ctx context.Context, id string) error {
	query := `UPDATE leads SET response_status = 'opened' WHERE id = $1 AND response_status = 'none'`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *LeadRepository) MarkClicked(ctx context.Context, id string) error {
	query := `UPDATE leads SET response_status = 'clicked' WHERE id = $1 AND response_status IN ('none', 'opened')`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *LeadRepository) MarkReplied(ctx context.Context, id string) error {
	query := `UPDATE leads SET response_status = 'replied', status = 'engaged' WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *LeadRepository) MarkInvalid(ctx context.Context, id string) error {
	query := `UPDATE leads SET status = 'invalid', response_status = 'invalid_email' WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *LeadRepository) CountFoundSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE found_at >= $1`, since).Scan(&count)
	return count, err
}

func (r *LeadRepository) QualitySummary(ctx context.Context) (*usecase.LeadQuality, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(score), 0),
		       COALESCE(MAX(score), 0),
		       COALESCE(MIN(score), 0),
		       COUNT(*) FILTER (WHERE score >= 400),
		       COUNT(*) FILTER (WHERE score >= 200 AND score < 400),
		       COUNT(*) FILTER (WHERE score < 200)
		FROM leads
		WHERE status <> 'invalid'`

	q := &usecase.LeadQuality{Distribution: make(map[string]int)}
	var high, medium, low int
	err := r.db.QueryRowContext(ctx, query).Scan(
		&q.Total, &q.AverageScore, &q.MaxScore, &q.MinScore,
		&high, &medium, &low,
	)
	if err != nil {
		return nil, err
	}
	q.Distribution["high"] = high
	q.Distribution["medium"] = medium
	q.Distribution["low"] = low
	return q, nil
}

func (r *LeadRepository) scanOne(row *sql.Row) (*entity.Lead, error) {
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	return lead, err
}

func (r *LeadRepository) scanMany(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var lastContacted sql.NullTime
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Company, &lead.Position,
		&lead.Industry, &lead.Location, &lead.LinkedInURL, &lead.CompanyWebsite,
		&lead.Phone, &lead.Employees, &lead.BuyingSignals, &lead.Notes,
		&lead.Source, &lead.Score, &lead.Status, &lead.ResponseStatus,
		&lead.FoundAt, &lastContacted,
	)
	if err != nil {
		return nil, err
	}
	if lastContacted.Valid {
		lead.LastContacted = &lastContacted.Time
	}
	return &lead, nil
}
