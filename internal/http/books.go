package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/books"
	"github.com/openshelf/bookshelf/internal/covers"
	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/entities"
)

// publishedDateLayout is the wire format for book publication dates.
const publishedDateLayout = "2006-01-02"

// BooksController exposes the shared catalog: upload, edit, soft-delete,
// detail and paginated listing.
type BooksController struct {
	service *books.Service
}

func NewBooksController(service *books.Service) *BooksController {
	return &BooksController{service: service}
}

type bookResponse struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Pages         int    `json:"pages"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedDate string `json:"published_date"`
	IsAvailable   bool   `json:"is_available"`
	Slug          string `json:"slug"`
	CoverURL      string `json:"cover_url,omitempty"`
}

func newBookResponse(book *entities.Book) bookResponse {
	return bookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Description:   book.Description,
		Pages:         book.Pages,
		Author:        book.Author.Username,
		Genre:         book.Genre.Name,
		PublishedDate: book.PublishedDate.Format(publishedDateLayout),
		IsAvailable:   book.IsAvailable,
		Slug:          book.Slug,
		CoverURL:      book.CoverURL,
	}
}

func (ctl *BooksController) List(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}

	items, total, err := ctl.service.List(page, pageSize)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	results := make([]bookResponse, 0, len(items))
	for i := range items {
		results = append(results, newBookResponse(&items[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	next, prev := pageLinks(page, page < totalPages, page > 1)
	c.JSON(http.StatusOK, PageResponse{
		Count:    total,
		Next:     next,
		Previous: prev,
		Results:  results,
	})
}

func (ctl *BooksController) Get(c *gin.Context) {
	book, err := ctl.service.Get(c.Param("slug"))
	if errors.Is(err, catalog.ErrBookNotFound) {
		respondNotFound(c, "book not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

func (ctl *BooksController) Upload(c *gin.Context) {
	pages, err := strconv.Atoi(c.PostForm("pages"))
	if err != nil {
		respondBadRequest(c, "pages must be an integer")
		return
	}

	publishedDate, err := time.Parse(publishedDateLayout, c.PostForm("published_date"))
	if err != nil {
		respondBadRequest(c, "published_date must be in YYYY-MM-DD format")
		return
	}

	input := books.CreateBookInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		Pages:         pages,
		Genre:         c.PostForm("genre"),
		PublishedDate: publishedDate,
	}

	if availStr, present := c.GetPostForm("is_available"); present {
		avail, err := strconv.ParseBool(availStr)
		if err != nil {
			respondBadRequest(c, "is_available must be a boolean")
			return
		}
		input.IsAvailable = &avail
	}

	cover, closeCover, ok := openCoverFile(c)
	if !ok {
		return
	}
	defer closeCover()
	input.Cover = cover

	book, err := ctl.service.Create(c.Request.Context(), GetUserID(c), input)
	if err != nil {
		ctl.respondBookError(c, err, "upload book")
		return
	}

	respondCreated(c, gin.H{
		"message": "Book uploaded successfully",
		"book": gin.H{
			"id":    book.ID,
			"title": book.Title,
			"slug":  book.Slug,
		},
	})
}

func (ctl *BooksController) Update(c *gin.Context) {
	var update books.BookUpdate

	if title, present := c.GetPostForm("title"); present {
		update.Title = &title
	}
	if description, present := c.GetPostForm("description"); present {
		update.Description = &description
	}
	if pagesStr, present := c.GetPostForm("pages"); present {
		pages, err := strconv.Atoi(pagesStr)
		if err != nil {
			respondBadRequest(c, "pages must be an integer")
			return
		}
		update.Pages = &pages
	}
	if genre, present := c.GetPostForm("genre"); present {
		update.Genre = &genre
	}
	if dateStr, present := c.GetPostForm("published_date"); present {
		publishedDate, err := time.Parse(publishedDateLayout, dateStr)
		if err != nil {
			respondBadRequest(c, "published_date must be in YYYY-MM-DD format")
			return
		}
		update.PublishedDate = &publishedDate
	}
	if availStr, present := c.GetPostForm("is_available"); present {
		avail, err := strconv.ParseBool(availStr)
		if err != nil {
			respondBadRequest(c, "is_available must be a boolean")
			return
		}
		update.IsAvailable = &avail
	}

	cover, closeCover, ok := openCoverFile(c)
	if !ok {
		return
	}
	defer closeCover()
	update.Cover = cover

	book, err := ctl.service.Update(c.Request.Context(), GetUserID(c), c.Param("slug"), update)
	if err != nil {
		ctl.respondBookError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated",
		"book":    newBookResponse(book),
	})
}

func (ctl *BooksController) Delete(c *gin.Context) {
	err := ctl.service.Delete(c.Request.Context(), GetUserID(c), c.Param("slug"))
	if err != nil {
		ctl.respondBookError(c, err, "delete book")
		return
	}
	respondSuccess(c, "Book deleted")
}

// openCoverFile returns the optional cover_image form file. The reader is
// nil when no file was uploaded. On malformed multipart input it responds
// 400 and returns ok=false.
func openCoverFile(c *gin.Context) (io.Reader, func(), bool) {
	header, err := c.FormFile("cover_image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, true
	}
	if err != nil {
		respondBadRequest(c, "invalid cover_image upload")
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, "invalid cover_image upload")
		return nil, nil, false
	}
	return file, func() { file.Close() }, true
}

// respondBookError maps catalog service errors onto the API error taxonomy.
func (ctl *BooksController) respondBookError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		respondNotFound(c, "book not found")
	case errors.Is(err, books.ErrForbidden):
		respondForbidden(c, err.Error())
	case errors.Is(err, catalog.ErrTitleExists):
		respondConflict(c, err.Error())
	case errors.Is(err, books.ErrTitleEmpty),
		errors.Is(err, books.ErrInvalidPages),
		errors.Is(err, books.ErrFutureDate),
		errors.Is(err, books.ErrGenreEmpty),
		errors.Is(err, books.ErrGenreTooLong),
		errors.Is(err, covers.ErrImageTooLarge),
		errors.Is(err, covers.ErrInvalidImage):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
