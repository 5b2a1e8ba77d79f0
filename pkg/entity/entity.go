package entity

import (
	"time"
)

const (
	DefaultDiaryName = "My Diary"
	MaxRating        = 3
)

type Account struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type MoodRecord struct {
	ID            int64      `json:"id"`
	OwnerUsername string     `json:"owner"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	DiaryName     string     `json:"diary_name"`
	MoodEmojiID   string     `json:"mood_emoji_id"`
	FeelingLabel  string     `json:"feeling_label"`
	Description   string     `json:"description"`
	Rating        int        `json:"rating"`
	HasImage      bool       `json:"has_image"`
	ImagePath     string     `json:"-"`
}

// Clone returns a copy that shares no memory with r.
func (r MoodRecord) Clone() MoodRecord {
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}

// SetImage keeps HasImage and ImagePath consistent.
func (r *MoodRecord) SetImage(path string) {
	r.ImagePath = path
	r.HasImage = path != ""
}
