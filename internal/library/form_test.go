package library

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() BookForm {
	return BookForm{
		Name:        "Dune",
		ISBN:        "9780441013593",
		Description: "Spice and sand",
		PageCount:   412,
		Author:      "Frank Herbert",
	}
}

func TestBookForm_Validate(t *testing.T) {
	t.Run("accepts a complete form", func(t *testing.T) {
		assert.NoError(t, validForm().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*BookForm)
		field   string
		message string
	}{
		{"empty name", func(f *BookForm) { f.Name = "" }, "name", "Name is required"},
		{"blank name", func(f *BookForm) { f.Name = "   " }, "name", "Name is required"},
		{"empty isbn", func(f *BookForm) { f.ISBN = "" }, "isbn", "ISBN is required"},
		{"empty description", func(f *BookForm) { f.Description = "" }, "description", "Description is required"},
		{"zero pages", func(f *BookForm) { f.PageCount = 0 }, "pageCount", "Page count must be at least 1"},
		{"negative pages", func(f *BookForm) { f.PageCount = -3 }, "pageCount", "Page count must be at least 1"},
		{"empty author", func(f *BookForm) { f.Author = "" }, "author", "Author is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := form.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.message, verr.Fields[0].Message)
		})
	}

	t.Run("reports every failing field in form order", func(t *testing.T) {
		err := BookForm{}.Validate()

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Name is required; ISBN is required; Description is required; Page count must be at least 1; Author is required", verr.Error())
		assert.Equal(t, "Author is required", verr.Details()["author"])
	})
}

func TestBookChanges_Apply(t *testing.T) {
	name := "Children of Dune"
	pages := 0

	t.Run("keeps omitted fields", func(t *testing.T) {
		got := BookChanges{Name: &name}.Apply(validForm())

		assert.Equal(t, "Children of Dune", got.Name)
		assert.Equal(t, "Frank Herbert", got.Author)
		assert.Equal(t, 412, got.PageCount)
	})

	t.Run("provided zero values are applied", func(t *testing.T) {
		got := BookChanges{PageCount: &pages}.Apply(validForm())

		assert.Equal(t, 0, got.PageCount)
		assert.Error(t, got.Validate())
	})

	t.Run("ChangesFromForm replaces everything", func(t *testing.T) {
		replacement := BookForm{Name: "a", ISBN: "b", Description: "c", PageCount: 1, Author: "d"}

		assert.Equal(t, replacement, ChangesFromForm(replacement).Apply(validForm()))
	})
}

func TestBookForm_Validate_NoLengthLimit(t *testing.T) {
	f := validForm()
	f.Name = strings.Repeat("n", 600)
	f.ISBN = strings.Repeat("9", 33)
	f.Author = strings.Repeat("a", 300)
	f.Description = strings.Repeat("d", 10000)
	assert.NoError(t, f.Validate())
}
