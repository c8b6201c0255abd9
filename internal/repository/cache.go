package repository

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/service"
)

// CachedBookRepository puts an LRU cache in front of another book store.
// Reads fill the cache; writes go to the store first and then the cache.
// Absent books are not cached.
type CachedBookRepository struct {
	next  service.BookStore
	cache *lru.Cache[string, *model.Book]
}

// NewCachedBookRepository wraps next with an LRU holding up to size books
func NewCachedBookRepository(next service.BookStore, size int) (*CachedBookRepository, error) {
	cache, err := lru.New[string, *model.Book](size)
	if err != nil {
		return nil, fmt.Errorf("create book cache: %w", err)
	}
	return &CachedBookRepository{next: next, cache: cache}, nil
}

// FindByID returns the book from cache or the wrapped store
func (r *CachedBookRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	if book, ok := r.cache.Get(id); ok {
		return book.Clone(), nil
	}

	book, err := r.next.FindByID(ctx, id)
	if err != nil || book == nil {
		return book, err
	}

	r.cache.Add(id, book.Clone())
	return book, nil
}

// Save writes through to the wrapped store
func (r *CachedBookRepository) Save(ctx context.Context, book *model.Book) error {
	if err := r.next.Save(ctx, book); err != nil {
		r.cache.Remove(book.ID)
		return err
	}
	r.cache.Add(book.ID, book.Clone())
	return nil
}

// Len returns the number of cached books
func (r *CachedBookRepository) Len() int {
	return r.cache.Len()
}
