package errorvalues

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrStorage          = errors.New("storage error")
	ErrAttachment       = errors.New("attachment error")
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrWrongOwner       = errors.New("mood record belongs to another account")
)

// Accounts
var (
	ErrDuplicateUsername = errors.New("user with such username already exists")
	ErrDuplicateEmail    = errors.New("user with such email already exists")
	ErrAccountNotFound   = fmt.Errorf("account %w", ErrNotFound)
	ErrCorruptCredential = errors.New("stored password hash can't be parsed")
)

// Mood records
var (
	ErrMoodRecordNotFound = fmt.Errorf("mood record %w", ErrNotFound)
	ErrAttachmentInUse    = errors.New("attachment is already referenced by another mood record")
)

// StorageError marks err as an underlying read/write failure while keeping it inspectable.
func StorageError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrStorage, err)
}

func AttachmentError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrAttachment, err)
}
