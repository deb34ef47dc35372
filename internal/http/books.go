package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

const (
	firstPagePath = "/books/page/1"
	listingTitle  = "My Awesome Book Library"

	flashCreated = "Book created"
	flashUpdated = "Book updated"
	flashDeleted = "Book deleted"
)

// bookForm is the view model behind the new-book and book-detail forms.
type bookForm struct {
	ID     uint
	Title  string
	Author string
	Genre  string
	Year   string
}

func formFromBook(b *entities.Book) bookForm {
	return bookForm{ID: b.ID, Title: b.Title, Author: b.Author, Genre: b.Genre, Year: b.Year}
}

func formFromInput(id uint, in services.BookInput) bookForm {
	return bookForm{ID: id, Title: in.Title, Author: in.Author, Genre: in.Genre, Year: in.Year}
}

type BooksController struct {
	catalog       BookCatalog
	flash         FlashStore
	mutations     MutationRecorder
	exportEnabled bool
	logger        *zap.Logger
}

// NewBooksController wires the catalog routes. flash and mutations may be nil.
func NewBooksController(catalog BookCatalog, flash FlashStore, mutations MutationRecorder, logger *zap.Logger) *BooksController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BooksController{
		catalog:   catalog,
		flash:     flash,
		mutations: mutations,
		logger:    logger,
	}
}

// Index redirects the bare catalog URLs to the first page.
func (bc *BooksController) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, firstPagePath)
}

// ListPage renders one page of the catalog ordered by author then title.
func (bc *BooksController) ListPage(c *gin.Context) {
	number, ok := parsePageParam(c, "pageNumber")
	if !ok {
		c.Redirect(http.StatusFound, firstPagePath)
		return
	}

	page, err := bc.catalog.ListPage(c.Request.Context(), number)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	c.HTML(http.StatusOK, "index", viewData(c, gin.H{
		"Title":         listingTitle,
		"Books":         page.Books,
		"NumberOfPages": page.TotalPages,
		"PageNumber":    page.Number,
		"Pages":         pageNumbers(page.TotalPages),
		"LibraryTitle":  "Books",
		"Flash":         bc.popFlash(c),
		"ExportEnabled": bc.exportEnabled,
	}))
}

// Search renders every book whose title, author, genre or year contains the
// submitted term, without pagination.
func (bc *BooksController) Search(c *gin.Context) {
	term := c.PostForm("searchTerm")

	books, err := bc.catalog.Search(c.Request.Context(), term)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	c.HTML(http.StatusOK, "index", viewData(c, gin.H{
		"Title":        listingTitle,
		"Books":        books,
		"LibraryTitle": "← Books",
		"SearchTerm":   term,
	}))
}

func (bc *BooksController) NewForm(c *gin.Context) {
	bc.renderForm(c, http.StatusOK, "new-book", "New Book", bookForm{}, nil)
}

func (bc *BooksController) Create(c *gin.Context) {
	var in services.BookInput
	if err := c.ShouldBind(&in); err != nil {
		renderErrorPage(c, http.StatusBadRequest, "Invalid form submission")
		return
	}

	_, err := bc.catalog.Create(c.Request.Context(), in)
	if ve, ok := services.IsValidationError(err); ok {
		bc.renderForm(c, http.StatusUnprocessableEntity, "new-book", "New Book",
			formFromInput(0, bc.catalog.Normalize(in)), ve)
		return
	}
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	bc.written(c, "create", flashCreated)
}

// Show renders the edit form for one book.
func (bc *BooksController) Show(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	bc.renderForm(c, http.StatusOK, "book-detail", "Edit Book", formFromBook(book), nil)
}

func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in services.BookInput
	if err := c.ShouldBind(&in); err != nil {
		renderErrorPage(c, http.StatusBadRequest, "Invalid form submission")
		return
	}

	_, err := bc.catalog.Update(c.Request.Context(), id, in)
	if ve, ok := services.IsValidationError(err); ok {
		bc.renderForm(c, http.StatusUnprocessableEntity, "book-detail", "Edit Book",
			formFromInput(id, bc.catalog.Normalize(in)), ve)
		return
	}
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	bc.written(c, "update", flashUpdated)
}

// DeleteConfirm renders the confirmation page for deleting a book.
func (bc *BooksController) DeleteConfirm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.logger, err)
		return
	}

	c.HTML(http.StatusOK, "delete-confirm", viewData(c, gin.H{
		"Title": "Delete Book",
		"Book":  formFromBook(book),
	}))
}

func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, bc.logger, err)
		return
	}

	bc.written(c, "delete", flashDeleted)
}

func (bc *BooksController) renderForm(c *gin.Context, status int, tmpl, title string, form bookForm, ve *services.ValidationError) {
	errs := map[string]string{}
	var list []services.FieldError
	if ve != nil {
		list = ve.Errors
		for _, fe := range ve.Errors {
			errs[fe.Field] = fe.Message
		}
	}

	c.HTML(status, tmpl, viewData(c, gin.H{
		"Title":     title,
		"Book":      form,
		"Errors":    errs,
		"ErrorList": list,
	}))
}

// written finishes a successful write: count it, leave a flash and send the
// browser back to the catalog.
func (bc *BooksController) written(c *gin.Context, operation, message string) {
	if bc.mutations != nil {
		bc.mutations.RecordMutation(operation)
	}
	if bc.flash != nil {
		bc.flash.PutFlash(c.Request.Context(), message)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (bc *BooksController) popFlash(c *gin.Context) string {
	if bc.flash == nil {
		return ""
	}
	return bc.flash.PopFlash(c.Request.Context())
}
