package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/database/readinglists"
	"github.com/openshelf/bookshelf/internal/entities"
)

// ReadingListsController exposes per-user reading lists and their ordered
// items. Every endpoint is scoped to the authenticated owner; another
// user's list answers 404 throughout.
type ReadingListsController struct {
	lists   *readinglists.Repository
	catalog *catalog.Repository
}

func NewReadingListsController(lists *readinglists.Repository, catalogRepo *catalog.Repository) *ReadingListsController {
	return &ReadingListsController{lists: lists, catalog: catalogRepo}
}

type listRequest struct {
	Name string `json:"name" binding:"required"`
}

type addBookRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Position *int `json:"position"`
}

type reorderRequest struct {
	BookIDs []uint `json:"book_ids" binding:"required"`
}

type listResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type listItemResponse struct {
	ID           uint         `json:"id"`
	Book         bookResponse `json:"book"`
	ListingOrder int          `json:"listing_order"`
}

func newListItemResponse(item *entities.ReadingListItem) listItemResponse {
	return listItemResponse{
		ID:           item.ID,
		Book:         newBookResponse(&item.Book),
		ListingOrder: item.ListingOrder,
	}
}

func (ctl *ReadingListsController) Create(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	list, err := ctl.lists.CreateList(GetUserID(c), req.Name)
	if errors.Is(err, readinglists.ErrDuplicateName) {
		respondConflict(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "create reading list")
		return
	}

	respondCreated(c, gin.H{"message": "Reading list created", "id": list.ID})
}

func (ctl *ReadingListsController) Rename(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	err := ctl.lists.RenameList(GetUserID(c), listID, req.Name)
	switch {
	case errors.Is(err, readinglists.ErrListNotFound):
		respondNotFound(c, "reading list not found")
	case errors.Is(err, readinglists.ErrDuplicateName):
		respondConflict(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "rename reading list")
	default:
		respondSuccess(c, "Reading list updated")
	}
}

func (ctl *ReadingListsController) Delete(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctl.lists.DeleteList(GetUserID(c), listID)
	if errors.Is(err, readinglists.ErrListNotFound) {
		respondNotFound(c, "reading list not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete reading list")
		return
	}
	respondSuccess(c, "Reading list deleted")
}

func (ctl *ReadingListsController) MyLists(c *gin.Context) {
	lists, err := ctl.lists.ListsByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list reading lists")
		return
	}

	results := make([]listResponse, 0, len(lists))
	for _, list := range lists {
		results = append(results, listResponse{ID: list.ID, Name: list.Name})
	}
	c.JSON(http.StatusOK, results)
}

func (ctl *ReadingListsController) AddBook(c *gin.Context) {
	list, ok := ctl.ownedList(c)
	if !ok {
		return
	}

	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	if _, err := ctl.catalog.GetBookByID(req.BookID); err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book not found")
			return
		}
		respondInternalError(c, err, "add book to list")
		return
	}

	err := ctl.lists.AddBook(list.ID, req.BookID, req.Position)
	switch {
	case errors.Is(err, readinglists.ErrBookAlreadyInList):
		respondConflict(c, err.Error())
	case errors.Is(err, readinglists.ErrInvalidPosition):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "add book to list")
	default:
		respondCreated(c, SuccessResponse{Message: "Book added to list"})
	}
}

func (ctl *ReadingListsController) RemoveBook(c *gin.Context) {
	list, ok := ctl.ownedList(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookID")
	if !ok {
		return
	}

	err := ctl.lists.RemoveBook(list.ID, bookID)
	if errors.Is(err, readinglists.ErrBookNotInList) {
		respondNotFound(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "remove book from list")
		return
	}
	respondSuccess(c, "Book removed from list")
}

func (ctl *ReadingListsController) Reorder(c *gin.Context) {
	list, ok := ctl.ownedList(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BookIDs) == 0 {
		respondBadRequest(c, "book_ids is required")
		return
	}

	err := ctl.lists.Reorder(list.ID, req.BookIDs)
	if errors.Is(err, readinglists.ErrSetMismatch) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "reorder list")
		return
	}
	respondSuccess(c, "List reordered")
}

func (ctl *ReadingListsController) Items(c *gin.Context) {
	list, ok := ctl.ownedList(c)
	if !ok {
		return
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}

	itemsPage, err := ctl.lists.ListItems(list.ID, page, pageSize)
	if errors.Is(err, readinglists.ErrPageNotFound) {
		respondNotFound(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "list items")
		return
	}

	results := make([]listItemResponse, 0, len(itemsPage.Items))
	for i := range itemsPage.Items {
		results = append(results, newListItemResponse(&itemsPage.Items[i]))
	}

	next, prev := pageLinks(page, itemsPage.HasNext, itemsPage.HasPrev)
	c.JSON(http.StatusOK, PageResponse{
		Count:    itemsPage.Total,
		Next:     next,
		Previous: prev,
		Results:  results,
	})
}

// ownedList resolves the :id parameter to a list owned by the caller,
// responding 404 otherwise.
func (ctl *ReadingListsController) ownedList(c *gin.Context) (*entities.ReadingList, bool) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	list, err := ctl.lists.GetList(GetUserID(c), listID)
	if errors.Is(err, readinglists.ErrListNotFound) {
		respondNotFound(c, "reading list not found")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "get reading list")
		return nil, false
	}
	return list, true
}
