package minutes

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ActionItem struct {
	Task  string `json:"task"`
	Owner string `json:"owner"`
}

// ActionItems is stored as a jsonb column.
type ActionItems []ActionItem

func (a ActionItems) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *ActionItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("minutes: unsupported action_items source")
	}
}

// Minute is one generated set of meeting minutes, owned by a single user.
type Minute struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      int            `db:"user_id" json:"user_id"`
	Title       string         `db:"title" json:"title"`
	Attendees   pq.StringArray `db:"attendees" json:"attendees"`
	Summary     string         `db:"summary" json:"summary"`
	KeyPoints   pq.StringArray `db:"key_points" json:"key_points"`
	ActionItems ActionItems    `db:"action_items" json:"action_items"`
	Decisions   pq.StringArray `db:"decisions" json:"decisions"`
	ShareToken  *string        `db:"share_token" json:"share_token,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type UpdateRequest struct {
	Title       *string      `json:"title,omitempty"`
	Attendees   []string     `json:"attendees,omitempty"`
	Summary     *string      `json:"summary,omitempty"`
	KeyPoints   []string     `json:"key_points,omitempty"`
	ActionItems []ActionItem `json:"action_items,omitempty"`
	Decisions   []string     `json:"decisions,omitempty"`
}
