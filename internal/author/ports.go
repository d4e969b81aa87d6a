package author

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=author

// Repository defines the author storage port. Delete removes the author's
// books as well.
type Repository interface {
	List(ctx context.Context, q Query) ([]Author, int, error)
	Get(ctx context.Context, id int64) (Author, error)
	Books(ctx context.Context, authorID int64) ([]BookSummary, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, a *Author) error
	Update(ctx context.Context, a *Author) error
	Delete(ctx context.Context, id int64) error
}
