package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	Get(ctx context.Context, id int64) (Book, error)
	TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error)
	AuthorExists(ctx context.Context, authorID int64) (bool, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
	// DeleteMany removes every listed book that exists and returns how many
	// were removed.
	DeleteMany(ctx context.Context, ids []int64) (int, error)
}
