package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Day columns hold the UTC calendar day as YYYY-MM-DD.

type Attendance struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"userId"`
	Day          string     `db:"day" json:"date"`
	CheckInTime  time.Time  `db:"check_in_time" json:"checkInTime"`
	CheckOutTime *time.Time `db:"check_out_time" json:"checkOutTime"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

type LinkType string

const (
	LinkFigma   LinkType = "figma"
	LinkLinear  LinkType = "linear"
	LinkNotion  LinkType = "notion"
	LinkSlack   LinkType = "slack"
	LinkGithub  LinkType = "github"
	LinkUnknown LinkType = "unknown"
)

type Todo struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Completed   bool       `db:"completed" json:"completed"`
	DueDate     time.Time  `db:"due_date" json:"dueDate"`
	LinkURL     *string    `db:"link_url" json:"linkUrl"`
	LinkType    *LinkType  `db:"link_type" json:"linkType"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type JournalEntry struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	Description string     `db:"description" json:"description"`
	Day         string     `db:"day" json:"date"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type ActivityLog struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	ActionType  string    `db:"action_type" json:"actionType"`
	EntityType  string    `db:"entity_type" json:"entityType"`
	EntityID    *string   `db:"entity_id" json:"entityId"`
	EntityTitle *string   `db:"entity_title" json:"entityTitle"`
	Metadata    JSONMap   `db:"metadata" json:"metadata"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type UserSettings struct {
	ID                    string    `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"userId"`
	PreferredCheckInTime  string    `db:"preferred_check_in_time" json:"preferredCheckInTime"`
	PreferredCheckOutTime string    `db:"preferred_check_out_time" json:"preferredCheckOutTime"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// OAuthIntegration is a user's link to an external provider. A nil
// RefreshTokenEncrypted means the link is not usable.
type OAuthIntegration struct {
	ID                    string     `db:"id"`
	UserID                string     `db:"user_id"`
	Provider              string     `db:"provider"`
	RefreshTokenEncrypted *string    `db:"refresh_token_encrypted"`
	Scopes                StringList `db:"scopes"`
	ConnectedAt           time.Time  `db:"connected_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// StringList persists as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	raw, err := rawBytes(src)
	if err != nil || raw == nil {
		*l = nil
		return err
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// JSONMap persists as a JSON object in a text column; nil maps to NULL.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	raw, err := rawBytes(src)
	if err != nil || raw == nil {
		*m = nil
		return err
	}
	return json.Unmarshal(raw, (*map[string]any)(m))
}

func rawBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
