package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"nightlog/internal/model"
)

type dreamRepository struct {
	db *sqlx.DB
}

func NewDreamRepository(db *sqlx.DB) DreamRepository {
	return &dreamRepository{db: db}
}

const dreamColumns = `id, user_id, title, content, date, tags, is_lucid, mood, clarity,
       analysis_mood, analysis_symbols, analysis_interpretation, analysis_language, analyzed_at,
       is_deleted, deleted_at, created_at, updated_at`

// Create inserts a new dream owned by dream.UserID.
func (r *dreamRepository) Create(ctx context.Context, d *model.Dream) error {
	query := `
		INSERT INTO dreams (user_id, title, content, date, tags, is_lucid, mood, clarity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		d.UserID,
		d.Title,
		d.Content,
		d.Date,
		pq.Array([]string(d.Tags)),
		d.IsLucid,
		d.Mood,
		d.Clarity,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert dream: %w", err)
	}

	return nil
}

// GetByID retrieves a single dream, trashed or not.
func (r *dreamRepository) GetByID(ctx context.Context, id int64) (*model.Dream, error) {
	query := `SELECT ` + dreamColumns + ` FROM dreams WHERE id = $1`

	var d model.Dream
	err := r.db.GetContext(ctx, &d, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrDreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dream: %w", err)
	}

	d.HydrateAnalysis()
	return &d, nil
}

// Update persists the mutable dream fields. Ownership and trash state are the
// service's concern; the write itself is state-agnostic.
func (r *dreamRepository) Update(ctx context.Context, d *model.Dream) error {
	query := `
		UPDATE dreams
		SET title = $1, content = $2, date = $3, tags = $4, is_lucid = $5, mood = $6, clarity = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		d.Title,
		d.Content,
		d.Date,
		pq.Array([]string(d.Tags)),
		d.IsLucid,
		d.Mood,
		d.Clarity,
		d.ID,
	).Scan(&d.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ErrDreamNotFound
	}
	if err != nil {
		return fmt.Errorf("update dream: %w", err)
	}

	return nil
}

var sortColumns = map[string]string{
	model.SortByDate:      "date",
	model.SortByCreatedAt: "created_at",
	model.SortByTitle:     "title",
}

// List returns active dreams matching the filter plus the total match count.
// Absent filters contribute no predicate at all; the WHERE clause is built
// only from what the caller actually supplied.
func (r *dreamRepository) List(ctx context.Context, userID int64, f model.DreamFilter) ([]model.Dream, int, error) {
	f.Normalize()

	where := []string{"user_id = $1", "is_deleted = FALSE"}
	args := []interface{}{userID}

	if f.Mood != nil {
		args = append(args, *f.Mood)
		where = append(where, fmt.Sprintf("mood = $%d", len(args)))
	}
	if f.IsLucid != nil {
		args = append(args, *f.IsLucid)
		where = append(where, fmt.Sprintf("is_lucid = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%d OR content ILIKE $%d OR array_to_string(tags, ' ') ILIKE $%d)", n, n, n))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM dreams WHERE ` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count dreams: %w", err)
	}

	sortCol := sortColumns[f.SortBy]
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM dreams WHERE %s ORDER BY %s %s, id DESC LIMIT $%d OFFSET $%d`,
		dreamColumns, whereClause, sortCol, dir, len(args)-1, len(args))

	var dreams []model.Dream
	if err := r.db.SelectContext(ctx, &dreams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list dreams: %w", err)
	}

	for i := range dreams {
		dreams[i].HydrateAnalysis()
	}
	return dreams, total, nil
}

// ListTrashed returns the caller's trashed dreams, most recently deleted first.
func (r *dreamRepository) ListTrashed(ctx context.Context, userID int64) ([]model.Dream, error) {
	query := `SELECT ` + dreamColumns + `
		FROM dreams
		WHERE user_id = $1 AND is_deleted = TRUE
		ORDER BY deleted_at DESC`

	var dreams []model.Dream
	if err := r.db.SelectContext(ctx, &dreams, query, userID); err != nil {
		return nil, fmt.Errorf("list trashed dreams: %w", err)
	}

	for i := range dreams {
		dreams[i].HydrateAnalysis()
	}
	return dreams, nil
}

// SoftDelete stamps the dream as trashed. Re-invoking on an already-trashed
// dream resets deleted_at, which restarts the retention clock.
func (r *dreamRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE dreams SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete dream: %w", err)
	}
	return requireRow(result, model.ErrDreamNotFound)
}

// Restore clears the trash flags together, keeping them consistent.
func (r *dreamRepository) Restore(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE dreams SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("restore dream: %w", err)
	}
	return requireRow(result, model.ErrDreamNotFound)
}

// DeletePermanent removes the row outright, from either live state.
func (r *dreamRepository) DeletePermanent(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dreams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("permanently delete dream: %w", err)
	}
	return requireRow(result, model.ErrDreamNotFound)
}

// SaveAnalysis stores the analysis columns and mirrors the analysis mood onto
// the dream's own mood field.
func (r *dreamRepository) SaveAnalysis(ctx context.Context, id int64, a *model.Analysis) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE dreams
		SET analysis_mood = $1, analysis_symbols = $2, analysis_interpretation = $3,
		    analysis_language = $4, analyzed_at = $5, mood = $1, updated_at = NOW()
		WHERE id = $6
	`, a.Mood, pq.Array(a.Symbols), a.Interpretation, a.DetectedLanguage, a.AnalyzedAt, id)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return requireRow(result, model.ErrDreamNotFound)
}

// DeleteExpiredTrashed purges dreams whose trash stamp has aged past the
// retention window.
func (r *dreamRepository) DeleteExpiredTrashed(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dreams WHERE is_deleted = TRUE AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired trashed dreams: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

// insightsWhere builds the shared match clause for aggregations: the caller's
// active dreams, optionally bounded to [start, end] on the user-assigned date.
func insightsWhere(userID int64, start *time.Time, end time.Time) (string, []interface{}) {
	where := "user_id = $1 AND is_deleted = FALSE"
	args := []interface{}{userID}
	if start != nil {
		args = append(args, *start, end)
		where += fmt.Sprintf(" AND date >= $%d AND date <= $%d", len(args)-1, len(args))
	}
	return where, args
}

// Stats computes the unrounded aggregate counts for the window.
func (r *dreamRepository) Stats(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
	where, args := insightsWhere(userID, start, end)
	query := `
		SELECT COUNT(*) AS total_dreams,
		       COALESCE(AVG(clarity), 0) AS avg_clarity,
		       COUNT(*) FILTER (WHERE is_lucid) AS lucid_count,
		       COALESCE(SUM(cardinality(tags)), 0) AS total_tags
		FROM dreams
		WHERE ` + where

	var stats model.RawStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("dream stats: %w", err)
	}
	return &stats, nil
}

// MoodDistribution counts dreams per non-null mood, most common first.
func (r *dreamRepository) MoodDistribution(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.MoodCount, error) {
	where, args := insightsWhere(userID, start, end)
	query := `
		SELECT mood, COUNT(*) AS count
		FROM dreams
		WHERE ` + where + ` AND mood IS NOT NULL
		GROUP BY mood
		ORDER BY count DESC, mood ASC`

	var counts []model.MoodCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("mood distribution: %w", err)
	}
	return counts, nil
}

// DreamsOverTime counts dreams per calendar day, oldest first.
func (r *dreamRepository) DreamsOverTime(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.DayCount, error) {
	where, args := insightsWhere(userID, start, end)
	query := `
		SELECT to_char(date_trunc('day', date), 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM dreams
		WHERE ` + where + `
		GROUP BY date_trunc('day', date)
		ORDER BY date_trunc('day', date) ASC`

	var counts []model.DayCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("dreams over time: %w", err)
	}
	return counts, nil
}

// TopTags flattens tag arrays across matched dreams and returns the most
// frequent ones. Groups with no occurrences are simply absent.
func (r *dreamRepository) TopTags(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.TagCount, error) {
	where, args := insightsWhere(userID, start, end)
	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT tag, COUNT(*) AS count
		FROM dreams, unnest(tags) AS tag
		WHERE %s
		GROUP BY tag
		ORDER BY count DESC, tag ASC
		LIMIT $%d`, where, len(args))

	var counts []model.TagCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("top tags: %w", err)
	}
	return counts, nil
}

// TopSymbols is TopTags over the AI-detected symbol arrays.
func (r *dreamRepository) TopSymbols(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.SymbolCount, error) {
	where, args := insightsWhere(userID, start, end)
	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT symbol, COUNT(*) AS count
		FROM dreams, unnest(analysis_symbols) AS symbol
		WHERE %s
		GROUP BY symbol
		ORDER BY count DESC, symbol ASC
		LIMIT $%d`, where, len(args))

	var counts []model.SymbolCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("top symbols: %w", err)
	}
	return counts, nil
}

// requireRow converts a zero-row update/delete into notFound.
func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
