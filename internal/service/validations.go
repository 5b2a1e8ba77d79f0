package service

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("mood_id", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for _, char := range value {
				// Letters, digits, underscore or dash
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' && char != '-' {
					return false
				}
			}
			return true
		})
	})
}

// validationError joins every field error under ErrValidation.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		err = errorvalues.ErrValidation
		for _, fieldErr := range validationErrors {
			err = errors.Join(err, fieldErr)
		}
		return err
	}
	return errors.Join(errorvalues.ErrValidation, err)
}

type moodRecordRules struct {
	OwnerUsername string `validate:"required"`
	DiaryName     string `validate:"max=100"`
	MoodEmojiID   string `validate:"required,mood_id,max=64"`
	FeelingLabel  string `validate:"required,max=100"`
	Description   string `validate:"max=1000"`
	Rating        int    `validate:"min=0,max=3"`
	ImagePath     string `validate:"max=500"`
}

func validateRecord(rec *entity.MoodRecord) error {
	err := validate.Struct(moodRecordRules{
		OwnerUsername: rec.OwnerUsername,
		DiaryName:     rec.DiaryName,
		MoodEmojiID:   rec.MoodEmojiID,
		FeelingLabel:  rec.FeelingLabel,
		Description:   rec.Description,
		Rating:        rec.Rating,
		ImagePath:     rec.ImagePath,
	})
	if err != nil {
		return validationError(err)
	}
	if rec.HasImage != (rec.ImagePath != "") {
		return errors.Join(errorvalues.ErrValidation, errors.New("has_image doesn't match image_path"))
	}
	return nil
}

func validateVar(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return errors.Join(errorvalues.ErrValidation, errors.New(field+": "+err.Error()))
	}
	return nil
}

// NormalizeMoodID maps "Happy.png", " happy " and "happy" to the same id.
func NormalizeMoodID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.TrimSuffix(id, filepath.Ext(id))
}

func normalizeDiaryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.DefaultDiaryName
	}
	return name
}
