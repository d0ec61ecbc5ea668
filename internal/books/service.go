// Package books implements the catalog service: uploading, editing and
// soft-deleting books, genre resolution and slug issuance.
package books

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openshelf/bookshelf/internal/covers"
	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/entities"
)

const maxGenreLength = 100

var (
	ErrTitleEmpty   = errors.New("title cannot be empty")
	ErrInvalidPages = errors.New("pages cannot be less than 1")
	ErrFutureDate   = errors.New("published date cannot be in the future")
	ErrGenreEmpty   = errors.New("genre cannot be empty")
	ErrGenreTooLong = errors.New("genre name must be 100 characters or less")
	ErrForbidden    = errors.New("you are not the author of this book")
)

// CreateBookInput carries the fields of a book upload. Cover is optional.
type CreateBookInput struct {
	Title         string
	Description   string
	Pages         int
	Genre         string
	PublishedDate time.Time
	IsAvailable   *bool
	Cover         io.Reader
}

// BookUpdate carries the optional fields of a partial book edit.
type BookUpdate struct {
	Title         *string
	Description   *string
	Pages         *int
	Genre         *string
	PublishedDate *time.Time
	IsAvailable   *bool
	Cover         io.Reader
}

// Service handles book catalog operations.
type Service struct {
	catalog *catalog.Repository
	covers  covers.Store
}

// NewService creates a new books service.
func NewService(repo *catalog.Repository, coverStore covers.Store) *Service {
	return &Service{catalog: repo, covers: coverStore}
}

// Create validates and stores a new book owned by the given user.
func (s *Service) Create(ctx context.Context, userID uint, input CreateBookInput) (*entities.Book, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}
	if input.Pages < 1 {
		return nil, ErrInvalidPages
	}
	if input.PublishedDate.After(time.Now()) {
		return nil, ErrFutureDate
	}
	genreName, err := validateGenreName(input.Genre)
	if err != nil {
		return nil, err
	}

	if exists, err := s.catalog.TitleExists(title, 0); err != nil {
		return nil, err
	} else if exists {
		return nil, catalog.ErrTitleExists
	}

	coverURL := ""
	if input.Cover != nil {
		coverURL, err = s.storeCover(ctx, input.Cover)
		if err != nil {
			return nil, err
		}
	}

	genre, err := s.catalog.GetOrCreateGenre(genreName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve genre: %w", err)
	}

	slug, err := s.issueSlug(title)
	if err != nil {
		return nil, err
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	book := &entities.Book{
		Title:         title,
		Description:   input.Description,
		Pages:         input.Pages,
		AuthorID:      userID,
		GenreID:       genre.ID,
		PublishedDate: input.PublishedDate,
		IsAvailable:   available,
		Slug:          slug,
		CoverURL:      coverURL,
	}
	if err := s.catalog.CreateBook(book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return s.catalog.GetBookByID(book.ID)
}

// Update applies a partial edit to a book. Only the author may edit;
// a title change re-issues the slug.
func (s *Service) Update(ctx context.Context, userID uint, slug string, update BookUpdate) (*entities.Book, error) {
	book, err := s.catalog.GetBookBySlug(slug)
	if err != nil {
		return nil, err
	}
	if book.AuthorID != userID {
		return nil, ErrForbidden
	}

	fields := map[string]any{}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		if exists, err := s.catalog.TitleExists(title, book.ID); err != nil {
			return nil, err
		} else if exists {
			return nil, catalog.ErrTitleExists
		}
		newSlug, err := s.issueSlug(title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
		fields["slug"] = newSlug
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Pages != nil {
		if *update.Pages < 1 {
			return nil, ErrInvalidPages
		}
		fields["pages"] = *update.Pages
	}
	if update.PublishedDate != nil {
		if update.PublishedDate.After(time.Now()) {
			return nil, ErrFutureDate
		}
		fields["published_date"] = *update.PublishedDate
	}
	if update.Genre != nil {
		genreName, err := validateGenreName(*update.Genre)
		if err != nil {
			return nil, err
		}
		genre, err := s.catalog.GetOrCreateGenre(genreName)
		if err != nil {
			return nil, err
		}
		fields["genre_id"] = genre.ID
	}
	if update.IsAvailable != nil {
		fields["is_available"] = *update.IsAvailable
	}
	if update.Cover != nil {
		coverURL, err := s.storeCover(ctx, update.Cover)
		if err != nil {
			return nil, err
		}
		if book.CoverURL != "" {
			if err := s.covers.Remove(ctx, book.CoverURL); err != nil {
				return nil, fmt.Errorf("failed to remove old cover: %w", err)
			}
		}
		fields["cover_url"] = coverURL
	}

	if len(fields) > 0 {
		if err := s.catalog.UpdateBook(book.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.catalog.GetBookByID(book.ID)
}

// Delete soft-deletes a book. Only the author may delete.
func (s *Service) Delete(_ context.Context, userID uint, slug string) error {
	book, err := s.catalog.GetBookBySlug(slug)
	if err != nil {
		return err
	}
	if book.AuthorID != userID {
		return ErrForbidden
	}
	return s.catalog.SoftDeleteBook(book.ID)
}

// Get returns a book by its slug.
func (s *Service) Get(slug string) (*entities.Book, error) {
	return s.catalog.GetBookBySlug(slug)
}

// List returns one catalog page, newest first, with the total count.
func (s *Service) List(page, pageSize int) ([]entities.Book, int64, error) {
	return s.catalog.ListBooks(page, pageSize)
}

// storeCover validates an uploaded image and saves it to the cover store.
func (s *Service) storeCover(ctx context.Context, r io.Reader) (string, error) {
	data, format, err := covers.ValidateImage(r)
	if err != nil {
		return "", err
	}
	ext := format
	if format == "jpeg" {
		ext = "jpg"
	}
	return s.covers.Save(ctx, ext, bytes.NewReader(data))
}

// issueSlug derives a unique slug from a title, suffixing a counter on
// collision with an existing book (deleted books keep their slug).
func (s *Service) issueSlug(title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "book"
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.catalog.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func validateGenreName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrGenreEmpty
	}
	if len(name) > maxGenreLength {
		return "", ErrGenreTooLong
	}
	return name, nil
}
