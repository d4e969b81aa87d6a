package book_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/memstore"
	"libraryapi/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

type catalog struct {
	authors *author.Service
	books   *book.Service
}

func newCatalog(publicRead bool) catalog {
	store := memstore.New()
	return catalog{
		authors: author.NewService(store.Authors(), publicRead),
		books:   book.NewService(store.Books(), publicRead),
	}
}

func (c catalog) author(t *testing.T, actor *access.Actor, name string) author.Author {
	t.Helper()
	a, err := c.authors.Create(context.Background(), actor, author.Input{Name: ptr(name)})
	require.NoError(t, err)
	return a
}

func (c catalog) book(t *testing.T, actor *access.Actor, title string, year int, authorID int64) book.Book {
	t.Helper()
	b, err := c.books.Create(context.Background(), actor, book.Input{
		Title: ptr(title), PublicationYear: ptr(year), AuthorID: ptr(authorID),
	})
	require.NoError(t, err)
	return b
}

func titles(books []book.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestService_RowlingScenario(t *testing.T) {
	c := newCatalog(true)
	ctx := context.Background()
	rowling := c.author(t, testutil.Librarian, "J.K. Rowling")
	martin := c.author(t, testutil.Librarian, "George R.R. Martin")
	c.book(t, testutil.Librarian, "Harry Potter and the Philosopher's Stone", 1997, rowling.ID)
	c.book(t, testutil.Librarian, "Harry Potter and the Chamber of Secrets", 1998, rowling.ID)
	c.book(t, testutil.Librarian, "A Game of Thrones", 1996, martin.ID)

	got, total, err := c.books.List(ctx, nil, book.Query{
		AuthorID: &rowling.ID,
		Ordering: book.ParseOrdering("-publication_year"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{
		"Harry Potter and the Chamber of Secrets",
		"Harry Potter and the Philosopher's Stone",
	}, titles(got))

	got, _, err = c.books.List(ctx, nil, book.Query{Search: "martin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A Game of Thrones"}, titles(got))

	got, _, err = c.books.List(ctx, nil, book.Query{})
	require.NoError(t, err)
	assert.Equal(t, "A Game of Thrones", got[0].Title)
	assert.Equal(t, "George R.R. Martin", got[0].AuthorName)
}

func TestService_CreateDefaults(t *testing.T) {
	c := newCatalog(true)
	a := c.author(t, testutil.Member, "Ursula K. Le Guin")
	b := c.book(t, testutil.Member, "The Dispossessed", 1974, a.ID)

	assert.Equal(t, "1974-01-01", b.PublishedDate)
	require.NotNil(t, b.CreatedBy)
	assert.Equal(t, testutil.Member.UserID, *b.CreatedBy)
	assert.Equal(t, testutil.Member.UserID, *b.LastModifiedBy)
}

func TestService_OwnershipRules(t *testing.T) {
	c := newCatalog(true)
	ctx := context.Background()
	a := c.author(t, testutil.Member, "Octavia Butler")
	b := c.book(t, testutil.Member, "Kindred", 1979, a.ID)

	_, err := c.books.Update(ctx, testutil.Member2, b.ID, book.Input{Title: ptr("Stolen")}, true)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = c.books.Update(ctx, nil, b.ID, book.Input{Title: ptr("Stolen")}, true)
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)

	updated, err := c.books.Update(ctx, testutil.Librarian, b.ID, book.Input{Description: ptr("Time travel")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Kindred", updated.Title)
	assert.Equal(t, testutil.Librarian.UserID, *updated.LastModifiedBy)
	assert.Equal(t, testutil.Member.UserID, *updated.CreatedBy)

	assert.ErrorIs(t, c.books.Delete(ctx, testutil.Librarian, b.ID), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, c.books.Delete(ctx, testutil.Member2, b.ID), apperr.ErrPermissionDenied)

	// Refused calls change nothing.
	got, err := c.books.Get(ctx, nil, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kindred", got.Title)

	require.NoError(t, c.books.Delete(ctx, testutil.Member, b.ID))
	_, err = c.books.Get(ctx, nil, b.ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_FullUpdateRequiresEveryField(t *testing.T) {
	c := newCatalog(true)
	a := c.author(t, testutil.Admin, "Iain Banks")
	b := c.book(t, testutil.Admin, "Excession", 1996, a.ID)

	_, err := c.books.Update(context.Background(), testutil.Admin, b.ID, book.Input{Title: ptr("Look to Windward")}, false)
	require.Error(t, err)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "publication_year")
	assert.Contains(t, verr.Fields, "author")
}

func TestService_DuplicateTitleAndMissingAuthor(t *testing.T) {
	c := newCatalog(true)
	a := c.author(t, testutil.Admin, "Frank Herbert")
	c.book(t, testutil.Admin, "Dune", 1965, a.ID)

	_, err := c.books.Create(context.Background(), testutil.Admin, book.Input{
		Title: ptr("Dune"), PublicationYear: ptr(1965), AuthorID: ptr(int64(404)),
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"book with this title already exists."}, verr.Fields["title"])
	assert.Equal(t, []string{`Invalid pk "404" - object does not exist.`}, verr.Fields["author"])
}

func TestService_PrivateReads(t *testing.T) {
	c := newCatalog(false)
	ctx := context.Background()
	a := c.author(t, testutil.Admin, "Shared Author")
	mine := c.book(t, testutil.Member, "Mine", 2001, a.ID)
	theirs := c.book(t, testutil.Member2, "Theirs", 2002, a.ID)

	_, _, err := c.books.List(ctx, nil, book.Query{})
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)

	got, total, err := c.books.List(ctx, testutil.Member, book.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"Mine"}, titles(got))

	_, total, err = c.books.List(ctx, testutil.Librarian, book.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = c.books.Get(ctx, testutil.Member, theirs.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = c.books.Get(ctx, testutil.Member, mine.ID)
	assert.NoError(t, err)
	_, err = c.books.Get(ctx, testutil.Member, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_AuthorDeleteCascades(t *testing.T) {
	c := newCatalog(true)
	ctx := context.Background()
	a := c.author(t, testutil.Member, "Short Lived")
	b := c.book(t, testutil.Member, "Only Book", 2010, a.ID)

	require.NoError(t, c.authors.Delete(ctx, testutil.Member, a.ID))
	_, err := c.books.Get(ctx, nil, b.ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_BulkDelete(t *testing.T) {
	c := newCatalog(true)
	ctx := context.Background()
	a := c.author(t, testutil.Admin, "Many Books")
	b1 := c.book(t, testutil.Admin, "One", 2001, a.ID)
	b2 := c.book(t, testutil.Admin, "Two", 2002, a.ID)

	_, err := c.books.BulkDelete(ctx, testutil.Librarian, []int64{b1.ID})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	n, err := c.books.BulkDelete(ctx, testutil.Admin, []int64{b1.ID, b2.ID, b1.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = c.books.BulkDelete(ctx, testutil.Admin, nil)
	assert.True(t, apperr.IsValidation(err))
}
