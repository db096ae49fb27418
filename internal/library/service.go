// Package library implements the owner-scoped book operations behind the API.
//
// Every operation takes the authenticated owner's id. A book owned by someone
// else is reported as ErrNotFound, never as a permission error, so callers
// cannot discover other users' ids.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/library/internal/entities"
)

// Store is the persistence the service needs. Implementations must scope
// every lookup by owner and return ErrNotFound for missing or foreign rows.
type Store interface {
	ListForUser(ctx context.Context, userID uint) ([]entities.Book, error)
	GetForUser(ctx context.Context, id, userID uint) (*entities.Book, error)
	Create(ctx context.Context, book *entities.Book) error
	UpdateForUser(ctx context.Context, book *entities.Book) error
	DeleteForUser(ctx context.Context, id, userID uint) error
}

type Service struct {
	store Store
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, ownerID uint) ([]entities.Book, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	books, err := s.store.ListForUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uint) (*entities.Book, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	book, err := s.store.GetForUser(ctx, id, ownerID)
	if err != nil {
		return nil, wrapStoreErr("get book", err)
	}
	return book, nil
}

// Create validates form and stores a new book owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uint, form BookForm) (*entities.Book, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form = form.Normalize()

	now := s.timestamp()
	book := &entities.Book{
		Name:        form.Name,
		ISBN:        form.ISBN,
		Description: form.Description,
		PageCount:   form.PageCount,
		Author:      form.Author,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// Update merges changes into the stored book and validates the result.
// Identity, ownership and createdAt are never touched.
func (s *Service) Update(ctx context.Context, ownerID, id uint, changes BookChanges) (*entities.Book, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	book, err := s.store.GetForUser(ctx, id, ownerID)
	if err != nil {
		return nil, wrapStoreErr("load book", err)
	}

	form := changes.Apply(FormFromBook(*book))
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form = form.Normalize()

	book.Name = form.Name
	book.ISBN = form.ISBN
	book.Description = form.Description
	book.PageCount = form.PageCount
	book.Author = form.Author

	// updatedAt never moves backwards, even if the clock does.
	now := s.timestamp()
	if now.After(book.UpdatedAt) {
		book.UpdatedAt = now
	}

	if err := s.store.UpdateForUser(ctx, book); err != nil {
		return nil, wrapStoreErr("update book", err)
	}
	return book, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uint) error {
	if ownerID == 0 {
		return ErrUnauthorized
	}
	if err := s.store.DeleteForUser(ctx, id, ownerID); err != nil {
		return wrapStoreErr("delete book", err)
	}
	return nil
}

// FormFromBook extracts the editable fields of book.
func FormFromBook(book entities.Book) BookForm {
	return BookForm{
		Name:        book.Name,
		ISBN:        book.ISBN,
		Description: book.Description,
		PageCount:   book.PageCount,
		Author:      book.Author,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func wrapStoreErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
