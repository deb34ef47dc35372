package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
)

// PageSize is the number of books shown on one listing page.
const PageSize = 10

// Page is one page of the catalog listing.
type Page struct {
	Books      []entities.Book
	Number     int
	TotalPages int
	Total      int64
}

// CatalogService implements the catalog operations on top of a BookStore.
// Every write goes through sanitisation and validation first.
type CatalogService struct {
	store     BookStore
	validator *inputValidator
	logger    *zap.Logger
}

func NewCatalogService(store BookStore, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		store:     store,
		validator: newInputValidator(),
		logger:    logger,
	}
}

// ListPage returns the given 1-based page ordered by author then title.
// Pages past the end are returned empty with the real page count.
func (s *CatalogService) ListPage(ctx context.Context, number int) (*Page, error) {
	if number < 1 {
		return nil, ErrInvalidPage
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	totalPages := TotalPages(total)
	if number > totalPages {
		return &Page{Books: []entities.Book{}, Number: number, TotalPages: totalPages, Total: total}, nil
	}

	books, err := s.store.ListPage(ctx, PageSize, PageSize*(number-1))
	if err != nil {
		return nil, fmt.Errorf("list books page %d: %w", number, err)
	}

	return &Page{
		Books:      books,
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// TotalPages returns ceil(total / PageSize).
func TotalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

// Search matches the term against title, author, genre and year.
func (s *CatalogService) Search(ctx context.Context, term string) ([]entities.Book, error) {
	books, err := s.store.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	return book, nil
}

// Create validates the input and stores a new book.
// On validation failure no row is written and a *ValidationError is returned.
func (s *CatalogService) Create(ctx context.Context, in BookInput) (*entities.Book, error) {
	in, err := s.Validate(in)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:  in.Title,
		Author: in.Author,
		Genre:  in.Genre,
		Year:   in.Year,
	}
	if err := s.store.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("Book created", zap.Uint("id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// Update loads the book, applies the input and persists it.
// Returns ErrBookNotFound before validating when the ID is unknown.
func (s *CatalogService) Update(ctx context.Context, id uint, in BookInput) (*entities.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in, err = s.Validate(in)
	if err != nil {
		return nil, err
	}

	book.Title = in.Title
	book.Author = in.Author
	book.Genre = in.Genre
	book.Year = in.Year

	if err := s.store.Update(ctx, book); err != nil {
		return nil, mapNotFound(err, id)
	}

	s.logger.Info("Book updated", zap.Uint("id", book.ID))
	return book, nil
}

// Delete removes the book permanently.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return mapNotFound(err, id)
	}
	s.logger.Info("Book deleted", zap.Uint("id", id))
	return nil
}

// Validate returns the sanitised input, or a *ValidationError describing every
// invalid field.
func (s *CatalogService) Validate(in BookInput) (BookInput, error) {
	in = s.validator.Normalize(in)
	if err := s.validator.Check(in); err != nil {
		return in, err
	}
	return in, nil
}

// Normalize returns the sanitised input without validating it, for
// redisplaying a rejected form.
func (s *CatalogService) Normalize(in BookInput) BookInput {
	return s.validator.Normalize(in)
}

func mapNotFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	return fmt.Errorf("book %d: %w", id, err)
}
