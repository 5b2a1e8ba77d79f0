// Package projection turns journal snapshots into immutable view data: labels,
// asset names and star rows ready for display.
package projection

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"

	"github.com/limbo/moodkit/pkg/entity"
)

const (
	StarAsset        = "star.png"
	StarOutlineAsset = "star_outline.png"
	emojiExt         = ".png"

	dateLayout  = "January 02, 2006"
	monthLayout = "January 2006"
)

// EmojiAsset maps a mood id to its image asset name.
func EmojiAsset(moodID string) string {
	return moodID + emojiExt
}

// MoodName maps an asset name back to its mood id.
func MoodName(asset string) string {
	asset = strings.ToLower(strings.TrimSpace(asset))
	return strings.TrimSuffix(asset, filepath.Ext(asset))
}

// Stars reports which of the MaxRating stars are filled.
func Stars(rating int) [entity.MaxRating]bool {
	var stars [entity.MaxRating]bool
	for i := range stars {
		stars[i] = i < rating
	}
	return stars
}

func StarAssets(rating int) [entity.MaxRating]string {
	var assets [entity.MaxRating]string
	for i, filled := range Stars(rating) {
		if filled {
			assets[i] = StarAsset
		} else {
			assets[i] = StarOutlineAsset
		}
	}
	return assets
}

type Entry struct {
	ID           int64                    `json:"id"`
	DiaryName    string                   `json:"diary_name"`
	MoodEmojiID  string                   `json:"mood_emoji_id"`
	EmojiAsset   string                   `json:"emoji_asset"`
	FeelingLabel string                   `json:"feeling_label"`
	Description  string                   `json:"description"`
	Rating       int                      `json:"rating"`
	Stars        [entity.MaxRating]string `json:"stars"`
	Date         string                   `json:"date"`
	Weekday      string                   `json:"weekday"`
	Relative     string                   `json:"relative"`
	Edited       bool                     `json:"edited"`
	HasImage     bool                     `json:"has_image"`
	ImageShown   bool                     `json:"image_shown"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Month groups entries created in the same calendar month, newest first.
type Month struct {
	Header  string  `json:"header"`
	Entries []Entry `json:"entries"`
}

type Snapshot struct {
	Owner   string  `json:"owner"`
	Total   int     `json:"total"`
	Months  []Month `json:"months"`
	BuiltAt string  `json:"built_at"`
}

// Options tune how a Snapshot is built.
type Options struct {
	// Location for calendar labels; UTC when nil
	Location *time.Location
	// Now anchors relative labels; time.Now when nil
	Now func() time.Time
	// ImageAvailable decides ImageShown; a stored flag is trusted when nil
	ImageAvailable func(rec *entity.MoodRecord) bool
}

// Build expects records newest first, as the journal returns them.
func Build(owner string, records []entity.MoodRecord, opts Options) Snapshot {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	at := now()

	snap := Snapshot{
		Owner:   owner,
		Total:   len(records),
		Months:  make([]Month, 0),
		BuiltAt: at.In(loc).Format(time.RFC3339),
	}
	for i := range records {
		rec := &records[i]
		entry := buildEntry(rec, loc, at)
		if opts.ImageAvailable != nil {
			entry.ImageShown = rec.HasImage && opts.ImageAvailable(rec)
		}
		header := rec.CreatedAt.In(loc).Format(monthLayout)
		if n := len(snap.Months); n > 0 && snap.Months[n-1].Header == header {
			snap.Months[n-1].Entries = append(snap.Months[n-1].Entries, entry)
			continue
		}
		snap.Months = append(snap.Months, Month{Header: header, Entries: []Entry{entry}})
	}
	return snap
}

func buildEntry(rec *entity.MoodRecord, loc *time.Location, now time.Time) Entry {
	created := rec.CreatedAt.In(loc)
	return Entry{
		ID:           rec.ID,
		DiaryName:    rec.DiaryName,
		MoodEmojiID:  rec.MoodEmojiID,
		EmojiAsset:   EmojiAsset(rec.MoodEmojiID),
		FeelingLabel: rec.FeelingLabel,
		Description:  rec.Description,
		Rating:       rec.Rating,
		Stars:        StarAssets(rec.Rating),
		Date:         created.Format(dateLayout),
		Weekday:      created.Weekday().String(),
		Relative:     humanize.RelTime(rec.CreatedAt, now, "ago", "from now"),
		Edited:       rec.UpdatedAt != nil,
		HasImage:     rec.HasImage,
		ImageShown:   rec.HasImage,
		CreatedAt:    created,
	}
}

func (s Snapshot) Encode(w io.Writer) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(s)
}

func (s Snapshot) Marshal() ([]byte, error) {
	return sonic.ConfigDefault.Marshal(s)
}
