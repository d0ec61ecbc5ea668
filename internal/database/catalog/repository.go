// Package catalog provides database operations for books and genres.
//
// Soft deletion is handled here and only here: every read method goes
// through the notDeleted scope, so callers never re-derive the filter.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	book, err := repo.GetBookBySlug("the-trial")
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/bookshelf/internal/entities"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrTitleExists   = errors.New("a book with this title already exists")
)

// Repository handles all book and genre database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// notDeleted is the single soft-delete predicate applied by all reads.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// GetOrCreateGenre resolves a genre by exact name, creating it if absent.
func (r *Repository) GetOrCreateGenre(name string) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.Where("name = ?", name).First(&genre).Error
	if err == nil {
		return &genre, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	genre = entities.Genre{Name: name}
	if err := r.db.Create(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// CreateBook inserts a new book record.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// TitleExists reports whether a non-deleted book with the title exists,
// excluding the book with excludeID (pass 0 to check against all books).
func (r *Repository) TitleExists(title string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Scopes(notDeleted).
		Where("title = ? AND id != ?", title, excludeID).
		Count(&count).Error
	return count > 0, err
}

// SlugExists reports whether any book, deleted or not, already uses the slug.
// Deleted books keep their slug reserved so it stays unique.
func (r *Repository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// GetBookByID retrieves a non-deleted book by ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Scopes(notDeleted).Preload("Genre").Preload("Author").
		First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookBySlug retrieves a non-deleted book by slug.
func (r *Repository) GetBookBySlug(slug string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Scopes(notDeleted).Preload("Genre").Preload("Author").
		Where("slug = ?", slug).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns a page of non-deleted books, newest first, along with
// the total count.
func (r *Repository) ListBooks(page, pageSize int) ([]entities.Book, int64, error) {
	var total int64
	if err := r.db.Model(&entities.Book{}).Scopes(notDeleted).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	err := r.db.Scopes(notDeleted).Preload("Genre").Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&books).Error
	return books, total, err
}

// UpdateBook applies a partial set of column updates to a non-deleted book.
func (r *Repository) UpdateBook(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.Book{}).Scopes(notDeleted).
		Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// SoftDeleteBook flips the deletion flag. The record stays in place and
// disappears from every read path.
func (r *Repository) SoftDeleteBook(id uint) error {
	result := r.db.Model(&entities.Book{}).Scopes(notDeleted).
		Where("id = ?", id).Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}
