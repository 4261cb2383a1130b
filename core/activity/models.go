package activity

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

type (
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Level struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Taxonomy groups the reference lists used to classify activities.
	// A list left nil means its load failed and the caller should render
	// the matching controls as still loading.
	Taxonomy struct {
		Categories []Category `json:"categories"`
		Levels     []Level    `json:"levels"`
	}

	Asset struct {
		ID         string    `json:"id"`
		ActivityID string    `json:"activity_id"`
		Name       string    `json:"name"`
		FileType   string    `json:"file_type"`
		FileSize   int64     `json:"file_size"`
		FileURL    string    `json:"file_url"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	Activity struct {
		ID                  string      `json:"id"`
		Title               string      `json:"title"`
		Description         string      `json:"description"`
		Content             string      `json:"content"`
		AlgorithmCorrection null.String `json:"algorithm_correction"`
		CodeCorrection      null.String `json:"code_correction"`
		CategoryID          string      `json:"category_id"`
		LevelID             string      `json:"level_id"`
		CreatedBy           string      `json:"created_by"`
		IsPublished         bool        `json:"is_published"`
		CreatedAt           time.Time   `json:"created_at"` // UTC
		UpdatedAt           time.Time   `json:"updated_at"` // UTC
		Assets              []Asset     `json:"assets"`
	}
)

// NewActivity contains information needed to create a new Activity.
// Content is validated but never trimmed: surrounding whitespace may be
// significant in the rich HTML body.
type NewActivity struct {
	Title               string `json:"title" validate:"required"`
	Description         string `json:"description" validate:"required"`
	Content             string `json:"content" validate:"notblank"`
	AlgorithmCorrection string `json:"algorithm_correction"`
	CodeCorrection      string `json:"code_correction"`
	CategoryID          string `json:"category_id" validate:"required"`
	LevelID             string `json:"level_id" validate:"required"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// payload builds the insert payload: required fields first, optional
// corrections merged in only when their trimmed value is non-empty.
// New activities are always published right away so they appear in the
// student app without a separate review step.
func (na NewActivity) payload(creatorID string, now time.Time) Activity {
	act := Activity{
		Title:       na.Title,
		Description: na.Description,
		Content:     na.Content,
		CategoryID:  na.CategoryID,
		LevelID:     na.LevelID,
		CreatedBy:   creatorID,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if core.CleanString(na.AlgorithmCorrection) != "" {
		act.AlgorithmCorrection = null.StringFrom(na.AlgorithmCorrection)
	}
	if core.CleanString(na.CodeCorrection) != "" {
		act.CodeCorrection = null.StringFrom(na.CodeCorrection)
	}
	return act
}
