package service

import (
	"context"
	"io"
	"time"

	"github.com/limbo/moodkit/internal/attachment"
	"github.com/limbo/moodkit/pkg/entity"
)

type RegisterRequest struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
	// Optional second entry of the password from the sign-up form
	ConfirmPassword string `validate:"omitempty,eqfield=Password"`
}

type AccountServiceI interface {
	// Validates credentials, checks uniqueness and stores the bcrypt hash
	Register(ctx context.Context, req *RegisterRequest) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	// Reports whether password matches. Unknown user is ErrAccountNotFound, unreadable hash is ErrCorruptCredential
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
	// Same as VerifyCredentials but gives back the account, or ErrWrongCredentials
	Login(ctx context.Context, username, password string) (*entity.Account, error)
}

// ImageUpload carries raw image bytes to be staged as a new attachment.
type ImageUpload struct {
	Data io.Reader
	Ext  string
}

type CreateEntryRequest struct {
	DiaryName    string
	MoodEmojiID  string
	FeelingLabel string
	Description  string
	Rating       int
	// Path returned earlier by StoreNewAttachment. Mutually exclusive with Image
	ImagePath string
	Image     *ImageUpload
}

// EntryChanges lists the fields to change; nil means "leave as is".
type EntryChanges struct {
	DiaryName    *string
	MoodEmojiID  *string
	FeelingLabel *string
	Description  *string
	Rating       *int
	// Empty string removes the attachment. Mutually exclusive with Image
	ImagePath *string
	Image     *ImageUpload
}

type MoodServiceI interface {
	CreateEntry(ctx context.Context, owner string, req *CreateEntryRequest) (*entity.MoodRecord, error)
	GetEntry(ctx context.Context, owner string, id int64) (*entity.MoodRecord, error)
	// Reloads the stored row, applies only the supplied changes and stamps UpdatedAt
	UpdateEntry(ctx context.Context, owner string, id int64, changes *EntryChanges) (*entity.MoodRecord, error)
	// Deletes the row, then its attachment. ErrMoodRecordNotFound if already absent
	DeleteEntry(ctx context.Context, owner string, id int64) error
	// Retry-safe DeleteEntry: an absent row is success
	EnsureDeleted(ctx context.Context, owner string, id int64) error
	// Owner's records, newest first
	ListEntries(ctx context.Context, owner string) ([]entity.MoodRecord, error)
	Refresh(ctx context.Context, owner string) ([]entity.MoodRecord, error)
	StoreNewAttachment(ctx context.Context, src io.Reader, ext string) (string, error)
	AttachmentAvailable(rec *entity.MoodRecord) bool
	PruneOrphanAttachments(ctx context.Context, olderThan time.Duration) (int, error)
}

// AttachmentStore is the file side of the attachment lifecycle.
type AttachmentStore interface {
	Stage(ctx context.Context, src io.Reader, ext string) (string, error)
	Remove(ctx context.Context, path string) error
	Owns(path string) bool
	Exists(path string) bool
	List() ([]attachment.FileInfo, error)
}
