// Package books provides owner-scoped database operations for books.
//
// Every query filters on user_id, so a book that belongs to someone else is
// reported exactly like a book that does not exist.
//
// # Interface Implementation
//
//	var _ library.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetForUser(ctx, 123, userID)
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/library"
)

var _ library.Store = (*Repository)(nil)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns every book owned by userID, ordered by id.
func (r *Repository) ListForUser(ctx context.Context, userID uint) ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// GetForUser returns the book with the given id if userID owns it.
func (r *Repository) GetForUser(ctx context.Context, id, userID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, library.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book; the generated id is written back into book.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateForUser writes the mutable columns of book, scoped by its owner.
func (r *Repository) UpdateForUser(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where("id = ? AND user_id = ?", book.ID, book.UserID).
		Updates(map[string]interface{}{
			"name":        book.Name,
			"isbn":        book.ISBN,
			"description": book.Description,
			"page_count":  book.PageCount,
			"author":      book.Author,
			"updated_at":  book.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return library.ErrNotFound
	}
	return nil
}

// DeleteForUser removes the book if userID owns it.
func (r *Repository) DeleteForUser(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return library.ErrNotFound
	}
	return nil
}
