package services

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// BookInput is the user-submitted form of a book. Form tags match the HTML
// field names; validate tags hold the write-time rules.
type BookInput struct {
	Title  string `form:"title" validate:"required,max=512"`
	Author string `form:"author" validate:"required,max=256"`
	Genre  string `form:"genre" validate:"max=128"`
	Year   string `form:"year" validate:"omitempty,numeric,max=4"`
}

var fieldLabels = map[string]string{
	"Title":  "Title",
	"Author": "Author",
	"Genre":  "Genre",
	"Year":   "Year",
}

// inputValidator sanitises and validates BookInput values.
type inputValidator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

func newInputValidator() *inputValidator {
	return &inputValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy:   bluemonday.StrictPolicy(),
	}
}

// maxCleanPasses bounds how many layers of entity encoding clean unwraps.
const maxCleanPasses = 8

// clean strips markup and surrounding whitespace. The strict policy escapes
// entities, so they are decoded again to keep plain text plain; decoding can
// surface new markup, so the pair repeats until the value is stable.
func (v *inputValidator) clean(s string) string {
	for range maxCleanPasses {
		next := html.UnescapeString(v.policy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Still changing: drop anything that could open a tag.
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(s))
}

// Normalize returns a sanitised copy of the input.
func (v *inputValidator) Normalize(in BookInput) BookInput {
	return BookInput{
		Title:  v.clean(in.Title),
		Author: v.clean(in.Author),
		Genre:  v.clean(in.Genre),
		Year:   v.clean(in.Year),
	}
}

// Check validates an already normalised input.
func (v *inputValidator) Check(in BookInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate book: %w", err)
	}

	result := &ValidationError{}
	for _, fe := range verrs {
		result.Errors = append(result.Errors, FieldError{
			Field:   strings.ToLower(fe.StructField()),
			Message: fieldMessage(fe),
		})
	}
	return result
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.StructField()]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "numeric":
		return label + " must be a number"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
