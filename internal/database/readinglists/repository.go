// Package readinglists provides database operations for reading lists and
// their ordered items.
//
// Listing orders are dense: for a list with N items the orders are exactly
// 1..N after every successful mutation. Every mutation that touches more
// than one row runs inside a single transaction, so a failed operation
// never leaves a gap or a duplicate order behind.
//
// # Usage
//
//	repo := readinglists.NewRepository(db)
//	err := repo.AddBook(list.ID, book.ID, nil)
package readinglists

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/bookshelf/internal/entities"
)

var (
	ErrListNotFound      = errors.New("reading list not found")
	ErrDuplicateName     = errors.New("a reading list with this name already exists")
	ErrBookAlreadyInList = errors.New("book already in list")
	ErrBookNotInList     = errors.New("book not in list")
	ErrInvalidPosition   = errors.New("position must be 1 or greater")
	ErrSetMismatch       = errors.New("provided book IDs do not match the list")
	ErrPageNotFound      = errors.New("page not found")
)

// ItemsPage is one page of a list's items in ascending listing order.
type ItemsPage struct {
	Items   []entities.ReadingListItem
	Total   int64
	HasNext bool
	HasPrev bool
}

// Repository handles all reading list database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading lists repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateList creates an empty reading list for a user. List names are
// unique per user, not globally.
func (r *Repository) CreateList(userID uint, name string) (*entities.ReadingList, error) {
	taken, err := r.nameTaken(r.db, userID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	list := &entities.ReadingList{UserID: userID, Name: name}
	if err := r.db.Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// GetList retrieves a list by ID, scoped to its owner. Another user's
// list is indistinguishable from a missing one.
func (r *Repository) GetList(userID, listID uint) (*entities.ReadingList, error) {
	var list entities.ReadingList
	err := r.db.Where("id = ? AND user_id = ?", listID, userID).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListsByUser returns all reading lists owned by a user.
func (r *Repository) ListsByUser(userID uint) ([]entities.ReadingList, error) {
	var lists []entities.ReadingList
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&lists).Error
	return lists, err
}

// RenameList changes a list's name, keeping per-user uniqueness.
func (r *Repository) RenameList(userID, listID uint, name string) error {
	if _, err := r.GetList(userID, listID); err != nil {
		return err
	}
	taken, err := r.nameTaken(r.db, userID, name, listID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}
	return r.db.Model(&entities.ReadingList{}).
		Where("id = ?", listID).Update("name", name).Error
}

// DeleteList removes a list and all of its items.
func (r *Repository) DeleteList(userID, listID uint) error {
	if _, err := r.GetList(userID, listID); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reading_list_id = ?", listID).
			Delete(&entities.ReadingListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.ReadingList{}, listID).Error
	})
}

// AddBook inserts a book into a list. With a nil position the book is
// appended after the last item. With a position, every item at that
// position or later is shifted up by one before the insert, so the
// orders stay dense whatever position the caller picks. A position past
// the end is clamped to len+1 (an append).
func (r *Repository) AddBook(listID, bookID uint, position *int) error {
	if position != nil && *position < 1 {
		return ErrInvalidPosition
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.ReadingListItem{}).
			Where("reading_list_id = ? AND book_id = ?", listID, bookID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrBookAlreadyInList
		}

		var total int64
		err = tx.Model(&entities.ReadingListItem{}).
			Where("reading_list_id = ?", listID).
			Count(&total).Error
		if err != nil {
			return err
		}

		order := int(total) + 1
		if position != nil && *position < order {
			order = *position
			err = tx.Model(&entities.ReadingListItem{}).
				Where("reading_list_id = ? AND listing_order >= ?", listID, order).
				Update("listing_order", gorm.Expr("listing_order + 1")).Error
			if err != nil {
				return err
			}
		}

		item := entities.ReadingListItem{
			ReadingListID: listID,
			BookID:        bookID,
			ListingOrder:  order,
		}
		return tx.Create(&item).Error
	})
}

// RemoveBook deletes a book's item and closes the gap it leaves by
// decrementing every later order.
func (r *Repository) RemoveBook(listID, bookID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var item entities.ReadingListItem
		err := tx.Where("reading_list_id = ? AND book_id = ?", listID, bookID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotInList
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&entities.ReadingListItem{}, item.ID).Error; err != nil {
			return err
		}

		return tx.Model(&entities.ReadingListItem{}).
			Where("reading_list_id = ? AND listing_order > ?", listID, item.ListingOrder).
			Update("listing_order", gorm.Expr("listing_order - 1")).Error
	})
}

// Reorder rewrites the whole ordering of a list. The given sequence must
// be a permutation of the list's current book IDs; positions 1..N are
// assigned following the sequence. A failed check leaves the list
// untouched.
func (r *Repository) Reorder(listID uint, bookIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var items []entities.ReadingListItem
		err := tx.Where("reading_list_id = ?", listID).Find(&items).Error
		if err != nil {
			return err
		}

		if len(bookIDs) != len(items) {
			return ErrSetMismatch
		}
		current := make(map[uint]bool, len(items))
		for _, item := range items {
			current[item.BookID] = true
		}
		seen := make(map[uint]bool, len(bookIDs))
		for _, id := range bookIDs {
			if !current[id] || seen[id] {
				return ErrSetMismatch
			}
			seen[id] = true
		}

		for i, id := range bookIDs {
			err := tx.Model(&entities.ReadingListItem{}).
				Where("reading_list_id = ? AND book_id = ?", listID, id).
				Update("listing_order", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListItems returns one page of a list's items ordered by listing order.
// Pages are 1-indexed; a page past the end is an error, except that page
// 1 of an empty list is valid and empty.
func (r *Repository) ListItems(listID uint, page, pageSize int) (*ItemsPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrPageNotFound
	}

	var total int64
	err := r.db.Model(&entities.ReadingListItem{}).
		Where("reading_list_id = ?", listID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		return nil, ErrPageNotFound
	}

	var items []entities.ReadingListItem
	err = r.db.Where("reading_list_id = ?", listID).
		Preload("Book").Preload("Book.Genre").Preload("Book.Author").
		Order("listing_order ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ItemsPage{
		Items:   items,
		Total:   total,
		HasNext: page < totalPages,
		HasPrev: page > 1,
	}, nil
}

func (r *Repository) nameTaken(db *gorm.DB, userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&entities.ReadingList{}).
		Where("user_id = ? AND name = ? AND id != ?", userID, name, excludeID).
		Count(&count).Error
	return count > 0, err
}
