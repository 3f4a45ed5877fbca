package model

import (
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Mood values a dream (or its analysis) may carry.
const (
	MoodHappy    = "happy"
	MoodSad      = "sad"
	MoodAnxious  = "anxious"
	MoodPeaceful = "peaceful"
	MoodConfused = "confused"
	MoodExcited  = "excited"
	MoodFearful  = "fearful"
	MoodNeutral  = "neutral"
)

var validMoods = map[string]struct{}{
	MoodHappy:    {},
	MoodSad:      {},
	MoodAnxious:  {},
	MoodPeaceful: {},
	MoodConfused: {},
	MoodExcited:  {},
	MoodFearful:  {},
	MoodNeutral:  {},
}

// IsValidMood reports whether m is one of the eight known moods.
func IsValidMood(m string) bool {
	_, ok := validMoods[m]
	return ok
}

const (
	MaxTitleLength   = 200
	MinContentLength = 10
	MaxContentLength = 10000
	MaxTags          = 10
	MaxTagLength     = 50
	MinClarity       = 1
	MaxClarity       = 5
	DefaultClarity   = 3
)

// Analysis is the AI classification attached to a dream.
type Analysis struct {
	Mood             string    `json:"mood"`
	Symbols          []string  `json:"symbols"`
	Interpretation   string    `json:"interpretation"`
	DetectedLanguage string    `json:"detectedLanguage"`
	AnalyzedAt       time.Time `json:"analyzedAt"`
}

// Dream is a single journal entry owned by exactly one user. The owner never
// changes after creation. isDeleted/deletedAt are kept consistent by the
// repository: both set on soft delete, both cleared on restore.
type Dream struct {
	ID      int64          `db:"id" json:"id"`
	UserID  int64          `db:"user_id" json:"userId"`
	Title   string         `db:"title" json:"title"`
	Content string         `db:"content" json:"content"`
	Date    time.Time      `db:"date" json:"date"`
	Tags    pq.StringArray `db:"tags" json:"tags"`
	IsLucid bool           `db:"is_lucid" json:"isLucid"`
	Mood    *string        `db:"mood" json:"mood,omitempty"`
	Clarity int            `db:"clarity" json:"clarity"`

	AnalysisMood           *string        `db:"analysis_mood" json:"-"`
	AnalysisSymbols        pq.StringArray `db:"analysis_symbols" json:"-"`
	AnalysisInterpretation *string        `db:"analysis_interpretation" json:"-"`
	AnalysisLanguage       *string        `db:"analysis_language" json:"-"`
	AnalyzedAt             *time.Time     `db:"analyzed_at" json:"-"`

	// Analysis is hydrated from the flat analysis_* columns after scanning.
	Analysis *Analysis `db:"-" json:"analysis,omitempty"`

	IsDeleted bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// HydrateAnalysis folds the flat analysis columns into the nested Analysis
// object. A dream has an analysis iff analyzed_at is set.
func (d *Dream) HydrateAnalysis() {
	if d.AnalyzedAt == nil {
		d.Analysis = nil
		return
	}
	a := &Analysis{
		Symbols:    []string(d.AnalysisSymbols),
		AnalyzedAt: *d.AnalyzedAt,
	}
	if a.Symbols == nil {
		a.Symbols = []string{}
	}
	if d.AnalysisMood != nil {
		a.Mood = *d.AnalysisMood
	}
	if d.AnalysisInterpretation != nil {
		a.Interpretation = *d.AnalysisInterpretation
	}
	if d.AnalysisLanguage != nil {
		a.DetectedLanguage = *d.AnalysisLanguage
	}
	d.Analysis = a
}

// CreateDreamRequest is the payload for POST /api/dreams.
type CreateDreamRequest struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Date    *time.Time `json:"date"`
	Tags    []string   `json:"tags"`
	IsLucid *bool      `json:"isLucid"`
	Mood    *string    `json:"mood"`
	Clarity *int       `json:"clarity"`
}

func (r *CreateDreamRequest) Validate() []FieldError {
	var errs []FieldError
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)

	if r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
	} else if len(r.Title) > MaxTitleLength {
		errs = append(errs, FieldError{Field: "title", Message: "Title must be at most 200 characters"})
	}
	if len(r.Content) < MinContentLength {
		errs = append(errs, FieldError{Field: "content", Message: "Dream content must be at least 10 characters"})
	} else if len(r.Content) > MaxContentLength {
		errs = append(errs, FieldError{Field: "content", Message: "Dream content must be at most 10,000 characters"})
	}
	errs = append(errs, validateTags(r.Tags)...)
	if r.Mood != nil && !IsValidMood(*r.Mood) {
		errs = append(errs, FieldError{Field: "mood", Message: "Invalid mood"})
	}
	if r.Clarity != nil && (*r.Clarity < MinClarity || *r.Clarity > MaxClarity) {
		errs = append(errs, FieldError{Field: "clarity", Message: "Clarity must be between 1 and 5"})
	}
	return errs
}

// UpdateDreamRequest is a partial update: nil fields are left untouched.
type UpdateDreamRequest struct {
	Title   *string    `json:"title"`
	Content *string    `json:"content"`
	Date    *time.Time `json:"date"`
	Tags    []string   `json:"tags"`
	IsLucid *bool      `json:"isLucid"`
	Mood    *string    `json:"mood"`
	Clarity *int       `json:"clarity"`
}

func (r *UpdateDreamRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
		if trimmed == "" {
			errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
		} else if len(trimmed) > MaxTitleLength {
			errs = append(errs, FieldError{Field: "title", Message: "Title must be at most 200 characters"})
		}
	}
	if r.Content != nil {
		trimmed := strings.TrimSpace(*r.Content)
		r.Content = &trimmed
		if len(trimmed) < MinContentLength {
			errs = append(errs, FieldError{Field: "content", Message: "Dream content must be at least 10 characters"})
		} else if len(trimmed) > MaxContentLength {
			errs = append(errs, FieldError{Field: "content", Message: "Dream content must be at most 10,000 characters"})
		}
	}
	if r.Tags != nil {
		errs = append(errs, validateTags(r.Tags)...)
	}
	if r.Mood != nil && !IsValidMood(*r.Mood) {
		errs = append(errs, FieldError{Field: "mood", Message: "Invalid mood"})
	}
	if r.Clarity != nil && (*r.Clarity < MinClarity || *r.Clarity > MaxClarity) {
		errs = append(errs, FieldError{Field: "clarity", Message: "Clarity must be between 1 and 5"})
	}
	return errs
}

func validateTags(tags []string) []FieldError {
	var errs []FieldError
	if len(tags) > MaxTags {
		errs = append(errs, FieldError{Field: "tags", Message: "Maximum 10 tags allowed"})
	}
	for _, t := range tags {
		if len(t) > MaxTagLength {
			errs = append(errs, FieldError{Field: "tags", Message: "Tags must be at most 50 characters"})
			break
		}
	}
	return errs
}

// Sort keys accepted by the dream list endpoint.
const (
	SortByDate      = "date"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// DreamFilter holds the optional, independently combinable list filters.
// Nil/empty fields must not constrain the query at all.
type DreamFilter struct {
	Mood      *string
	IsLucid   *bool
	StartDate *time.Time
	EndDate   *time.Time
	Search    string

	SortBy    string
	SortOrder string

	Page  int
	Limit int
}

// Normalize applies defaults and clamps pagination bounds.
func (f *DreamFilter) Normalize() {
	if f.SortBy != SortByDate && f.SortBy != SortByCreatedAt && f.SortBy != SortByTitle {
		f.SortBy = SortByDate
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		f.SortOrder = "desc"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

// Pagination is the paging envelope returned alongside dream lists.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NewPagination derives totalPages/hasMore from a total row count.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

var (
	// ErrDreamNotFound is returned when a dream id does not resolve
	ErrDreamNotFound = errors.New("dream not found")

	// ErrNotDreamOwner is returned when the caller does not own the dream
	ErrNotDreamOwner = errors.New("not the dream owner")

	// ErrDreamNotTrashed is returned when restoring a dream that is not in trash
	ErrDreamNotTrashed = errors.New("dream is not in trash")
)
