package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/forgo/lending/internal/config"
	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/repository"
	"github.com/forgo/lending/internal/service"
)

func main() {
	file := flag.String("file", "books.json", "Path to a JSON array of books")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Backend == config.BackendMemory {
		fmt.Fprintf(os.Stderr, "Refusing to seed the memory backend: set STORE_BACKEND to sqlite, postgres or surreal\n")
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening seed file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	books, err := loadSeed(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *file, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s store: %v\n", cfg.Store.Backend, err)
		os.Exit(1)
	}
	defer func() { _ = stores.Close() }()

	if err := seed(ctx, stores.Books, books); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding books: %v\n", err)
		os.Exit(1)
	}

	notice := staleCacheNotice(cfg.Store)
	if notice != "" {
		fmt.Fprintln(os.Stderr, notice)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := map[string]any{
			"backend": cfg.Store.Backend,
			"seeded":  len(books),
			"books":   books,
		}
		if notice != "" {
			out["notice"] = notice
		}
		_ = enc.Encode(out)
		return
	}

	fmt.Println("Catalog Seeded")
	fmt.Println("==============")
	fmt.Printf("Backend:  %s\n", cfg.Store.Backend)
	fmt.Printf("Books:    %d\n", len(books))
	for _, b := range books {
		fmt.Printf("  %-12s %3d  %s\n", b.ID, b.CopiesAvailable, b.Title)
	}
}

// loadSeed decodes and validates a seed file. Every invalid entry is
// reported, not just the first.
func loadSeed(r io.Reader) ([]*model.Book, error) {
	var entries []model.SeedBook
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var (
		errs  []error
		seen  = make(map[string]int, len(entries))
		books = make([]*model.Book, 0, len(entries))
	)
	for i := range entries {
		entry := &entries[i]
		for _, fe := range entry.Validate() {
			errs = append(errs, fmt.Errorf("entry %d: %s", i, fe.Message))
		}
		if prev, dup := seen[entry.ID]; dup && entry.ID != "" {
			errs = append(errs, fmt.Errorf("entry %d: duplicate id %q (first at entry %d)", i, entry.ID, prev))
		}
		seen[entry.ID] = i
		books = append(books, entry.Book())
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return books, nil
}

// staleCacheNotice warns that a running server may keep serving the old
// copy of a seeded book. The server's LRU is process local and seed-books
// writes the store directly, so only a restart drops cached entries.
func staleCacheNotice(store config.StoreConfig) string {
	if store.BookCacheSize <= 0 {
		return ""
	}
	return fmt.Sprintf("Note: BOOK_CACHE_SIZE=%d. Restart any running server so its book cache picks up the seeded rows.", store.BookCacheSize)
}

// seed upserts every book into the store
func seed(ctx context.Context, store service.BookStore, books []*model.Book) error {
	for _, book := range books {
		if err := store.Save(ctx, book); err != nil {
			return fmt.Errorf("save book %s: %w", book.ID, err)
		}
	}
	return nil
}
