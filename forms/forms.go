package forms

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"weblog/models"
	"weblog/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the submitted field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Form is the capability set shared by user-submitted forms:
// validation and extraction of cleaned data for re-display or persistence.
type Form interface {
	Validate() bool
	Errors() map[string]string
}

// ShareForm carries a share-post-by-email submission.
type ShareForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	To       string `form:"to" validate:"required,email"`
	Comments string `form:"comments"`

	fieldErrors map[string]string
}

// Validate normalizes the input and reports whether every field constraint holds.
func (f *ShareForm) Validate() bool {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.To = strings.TrimSpace(f.To)
	f.Comments = strings.TrimSpace(f.Comments)
	f.fieldErrors = fieldErrors(validate.Struct(f))
	return len(f.fieldErrors) == 0
}

// Errors returns field-level validation messages keyed by field name.
func (f *ShareForm) Errors() map[string]string {
	return f.fieldErrors
}

// CommentForm carries an anonymous comment submission. It never knows which
// post it belongs to; the caller binds the post before persisting, so one
// form type serves every post.
type CommentForm struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,email"`
	Body  string `form:"body" validate:"required"`

	fieldErrors map[string]string
}

// Validate normalizes the input and reports whether every field constraint holds.
func (f *CommentForm) Validate() bool {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Body = strings.TrimSpace(f.Body)
	f.fieldErrors = fieldErrors(validate.Struct(f))
	return len(f.fieldErrors) == 0
}

// Errors returns field-level validation messages keyed by field name.
func (f *CommentForm) Errors() map[string]string {
	return f.fieldErrors
}

// Comment builds an unsaved comment from the cleaned data. The post reference
// is intentionally left unset.
func (f *CommentForm) Comment() models.Comment {
	return models.Comment{
		Name:   utils.Sanitize(f.Name),
		Email:  f.Email,
		Body:   utils.Sanitize(f.Body),
		Active: true,
	}
}

// fieldErrors flattens validator output into a field-to-message map.
func fieldErrors(err error) map[string]string {
	if err == nil {
		return map[string]string{}
	}
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["__all__"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
