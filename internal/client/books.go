package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/library"
)

// Book is the API's JSON representation of a book.
type Book = entities.Book

// BooksService maps one method to each /api/book endpoint.
type BooksService struct {
	client *Client
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *BooksService) GetAll(ctx context.Context) ([]Book, error) {
	books := []Book{}
	if err := s.client.do(ctx, http.MethodGet, "/api/book", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *BooksService) GetByID(ctx context.Context, id uint) (*Book, error) {
	var book Book
	if err := s.client.do(ctx, http.MethodGet, bookPath(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BooksService) Create(ctx context.Context, form library.BookForm) (*Book, error) {
	var book Book
	if err := s.client.do(ctx, http.MethodPost, "/api/book", form, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Update replaces every editable field with form.
func (s *BooksService) Update(ctx context.Context, id uint, form library.BookForm) (*Book, error) {
	return s.Patch(ctx, id, library.ChangesFromForm(form))
}

// Patch sends only the non-nil fields of changes; the server keeps the rest.
func (s *BooksService) Patch(ctx context.Context, id uint, changes library.BookChanges) (*Book, error) {
	var book Book
	if err := s.client.do(ctx, http.MethodPut, bookPath(id), changes, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete returns the server's confirmation message.
func (s *BooksService) Delete(ctx context.Context, id uint) (string, error) {
	var resp messageResponse
	if err := s.client.do(ctx, http.MethodDelete, bookPath(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func bookPath(id uint) string {
	return "/api/book/" + strconv.FormatUint(uint64(id), 10)
}
