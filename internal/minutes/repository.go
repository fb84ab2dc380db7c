package minutes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrMinuteNotFound = errors.New("minute not found")

const minuteColumns = `id, user_id, title, attendees, summary, key_points, action_items, decisions, share_token, created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, m *Minute) (*Minute, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	saved := &Minute{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO minutes (id, user_id, title, attendees, summary, key_points, action_items, decisions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+minuteColumns+`
	`, m.ID, m.UserID, m.Title, m.Attendees, m.Summary, m.KeyPoints, m.ActionItems, m.Decisions).StructScan(saved)

	return saved, err
}

// GetByID scopes by owner: a minute id from another user behaves exactly
// like a missing row.
func (r *SQLRepository) GetByID(ctx context.Context, userID int, id uuid.UUID) (*Minute, error) {
	m := &Minute{}
	err := r.db.GetContext(ctx, m, `
		SELECT `+minuteColumns+`
		FROM minutes
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMinuteNotFound
	}
	return m, err
}

func (r *SQLRepository) GetByShareToken(ctx context.Context, token string) (*Minute, error) {
	m := &Minute{}
	err := r.db.GetContext(ctx, m, `
		SELECT `+minuteColumns+`
		FROM minutes
		WHERE share_token = $1
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMinuteNotFound
	}
	return m, err
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int) ([]*Minute, error) {
	list := []*Minute{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+minuteColumns+`
		FROM minutes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return list, err
}

func (r *SQLRepository) Update(ctx context.Context, userID int, id uuid.UUID, req UpdateRequest) (*Minute, error) {
	var attendees, keyPoints, decisions interface{}
	if req.Attendees != nil {
		attendees = pq.StringArray(req.Attendees)
	}
	if req.KeyPoints != nil {
		keyPoints = pq.StringArray(req.KeyPoints)
	}
	if req.Decisions != nil {
		decisions = pq.StringArray(req.Decisions)
	}
	var actionItems interface{}
	if req.ActionItems != nil {
		actionItems = ActionItems(req.ActionItems)
	}

	m := &Minute{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE minutes SET
			title = COALESCE($3, title),
			attendees = COALESCE($4, attendees),
			summary = COALESCE($5, summary),
			key_points = COALESCE($6, key_points),
			action_items = COALESCE($7, action_items),
			decisions = COALESCE($8, decisions),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+minuteColumns+`
	`, id, userID, req.Title, attendees, req.Summary, keyPoints, actionItems, decisions).StructScan(m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMinuteNotFound
	}
	return m, err
}

func (r *SQLRepository) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM minutes
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMinuteNotFound
	}
	return nil
}

func (r *SQLRepository) SetShareToken(ctx context.Context, userID int, id uuid.UUID, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE minutes
		SET share_token = $3,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID, token)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMinuteNotFound
	}
	return nil
}
