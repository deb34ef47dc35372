// Package books provides database operations for the catalog's book records.
//
// # Interface Implementation
//
//	var _ services.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, err := repo.ListPage(ctx, 10, 0)
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
)

// catalogOrder is the order used by listings and exports.
const catalogOrder = "author ASC, title ASC"

// likeEscaper escapes LIKE wildcards so a search term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPage returns up to limit books starting at offset, ordered by author then title.
func (r *Repository) ListPage(ctx context.Context, limit, offset int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Order(catalogOrder).
		Limit(limit).
		Offset(offset).
		Find(&books).Error
	return books, err
}

// Count returns the total number of books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error
	return total, err
}

// Search returns books whose title, author, genre or year contains term,
// ordered by title. Case sensitivity follows the database collation.
func (r *Repository) Search(ctx context.Context, term string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + likeEscaper.Replace(term) + "%"
	err := r.db.WithContext(ctx).
		Where(`title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\' OR genre LIKE ? ESCAPE '\' OR year LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// GetByID retrieves a book by its ID. Returns gorm.ErrRecordNotFound when missing.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book and fills in its ID.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// CreateBatch inserts books in batches of 100.
func (r *Repository) CreateBatch(ctx context.Context, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(books, 100).Error
}

// Update persists the editable fields of an existing book, including empty values.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).
		Model(book).
		Select("title", "author", "genre", "year").
		Updates(book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a book permanently. Returns gorm.ErrRecordNotFound when missing.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// All returns every book in catalog order.
func (r *Repository) All(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order(catalogOrder).Find(&books).Error
	return books, err
}
