package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Post is the canonical post record. The same shape is cached as a JSON
// snapshot with CreatedAt serialized as ISO-8601 text.
type Post struct {
	PostID    string                      `gorm:"primaryKey;size:191" json:"post_id"`
	UserID    string                      `gorm:"not null;index;size:191" json:"user_id"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Hashtags  datatypes.JSONSlice[string] `json:"hashtags"`
	CreatedAt time.Time                   `json:"created_at"`
	// Likes is the canonical like counter. It is unrelated to the trending
	// score kept by the ranking structure.
	Likes int64 `gorm:"not null;default:0" json:"likes"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// GraphPost is the projection of a post returned by a graph traversal.
type GraphPost struct {
	PostID   string   `json:"post_id"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// TrendingEntry is one member of the ranking structure. TrendingScore is the
// cumulative like delta and is never read back into Post.Likes.
type TrendingEntry struct {
	PostID        string
	TrendingScore float64
}

// MarshalJSON encodes the entry as a [post_id, score] pair.
func (e TrendingEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.PostID, e.TrendingScore})
}

// UnmarshalJSON decodes a [post_id, score] pair.
func (e *TrendingEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("trending entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.PostID); err != nil {
		return fmt.Errorf("trending entry post_id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.TrendingScore); err != nil {
		return fmt.Errorf("trending entry score: %w", err)
	}
	return nil
}
