package entities

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book is soft-deleted via IsDeleted; read paths must go through the
// catalog repository so the filter is applied consistently.
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"uniqueIndex;size:255" json:"title"`
	Description   string    `json:"description,omitempty"`
	Pages         int       `json:"pages"`
	AuthorID      uint      `gorm:"index" json:"author_id"`
	Author        User      `gorm:"foreignKey:AuthorID" json:"-"`
	GenreID       uint      `gorm:"index" json:"genre_id"`
	Genre         Genre     `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	PublishedDate time.Time `gorm:"index" json:"published_date"`
	IsAvailable   bool      `gorm:"index;default:true" json:"is_available"`
	IsDeleted     bool      `gorm:"index;default:false" json:"-"`
	Slug          string    `gorm:"uniqueIndex;size:255" json:"slug"`
	CoverURL      string    `gorm:"size:2048" json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReadingList names are unique per owner, not globally.
type ReadingList struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"uniqueIndex:idx_user_list_name" json:"user_id"`
	Name      string            `gorm:"size:255;uniqueIndex:idx_user_list_name" json:"name"`
	Items     []ReadingListItem `gorm:"foreignKey:ReadingListID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ReadingListItem carries the 1-based dense position of a book within
// its list. ListingOrder values form a contiguous run starting at 1
// after every successful mutation.
type ReadingListItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReadingListID uint      `gorm:"index;uniqueIndex:idx_list_book" json:"reading_list_id"`
	BookID        uint      `gorm:"uniqueIndex:idx_list_book" json:"book_id"`
	Book          Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	ListingOrder  int       `gorm:"index" json:"listing_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
