package library

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BookForm carries the user-editable fields of a book. It is shared by the
// API, the web form and the CLI so every entry point enforces the same rules.
type BookForm struct {
	Name        string `json:"name" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	Description string `json:"description" validate:"required"`
	PageCount   int    `json:"pageCount" validate:"min=1"`
	Author      string `json:"author" validate:"required"`
}

// BookChanges is a partial update. Nil fields keep their stored value.
type BookChanges struct {
	Name        *string `json:"name,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	Description *string `json:"description,omitempty"`
	PageCount   *int    `json:"pageCount,omitempty"`
	Author      *string `json:"author,omitempty"`
}

// Apply overlays the provided fields onto form.
func (c BookChanges) Apply(form BookForm) BookForm {
	if c.Name != nil {
		form.Name = *c.Name
	}
	if c.ISBN != nil {
		form.ISBN = *c.ISBN
	}
	if c.Description != nil {
		form.Description = *c.Description
	}
	if c.PageCount != nil {
		form.PageCount = *c.PageCount
	}
	if c.Author != nil {
		form.Author = *c.Author
	}
	return form
}

// ChangesFromForm marks every field of form as provided.
func ChangesFromForm(form BookForm) BookChanges {
	return BookChanges{
		Name:        &form.Name,
		ISBN:        &form.ISBN,
		Description: &form.Description,
		PageCount:   &form.PageCount,
		Author:      &form.Author,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages are the user-facing messages per JSON field name.
var fieldMessages = map[string]string{
	"name":        "Name is required",
	"isbn":        "ISBN is required",
	"description": "Description is required",
	"pageCount":   "Page count must be at least 1",
	"author":      "Author is required",
}

// Normalize trims surrounding whitespace from the text fields.
func (f BookForm) Normalize() BookForm {
	f.Name = strings.TrimSpace(f.Name)
	f.ISBN = strings.TrimSpace(f.ISBN)
	f.Description = strings.TrimSpace(f.Description)
	f.Author = strings.TrimSpace(f.Author)
	return f
}

// Validate normalizes the form and checks every field. The returned error is
// a *ValidationError listing all failures.
func (f BookForm) Validate() error {
	err := validate.Struct(f.Normalize())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return verr
}
