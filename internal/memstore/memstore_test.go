package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/apperr"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/library"
	"libraryapi/internal/user"
)

func seed(t *testing.T, s *Store) (rowling, martin author.Author, books []book.Book) {
	t.Helper()
	ctx := context.Background()
	rowling = author.Author{Name: "J.K. Rowling"}
	martin = author.Author{Name: "George R.R. Martin"}
	require.NoError(t, s.Authors().Create(ctx, &rowling))
	require.NoError(t, s.Authors().Create(ctx, &martin))

	for _, b := range []book.Book{
		{Title: "Harry Potter and the Philosopher's Stone", PublicationYear: 1997, AuthorID: rowling.ID},
		{Title: "Harry Potter and the Chamber of Secrets", PublicationYear: 1998, AuthorID: rowling.ID},
		{Title: "A Game of Thrones", PublicationYear: 1996, AuthorID: martin.ID},
	} {
		b := b
		require.NoError(t, s.Books().Create(ctx, &b))
		books = append(books, b)
	}
	return rowling, martin, books
}

func TestBookRepo_CreateFillsAuthorName(t *testing.T) {
	s := New()
	rowling, _, books := seed(t, s)

	got, err := s.Books().Get(context.Background(), books[0].ID)
	require.NoError(t, err)
	assert.Equal(t, rowling.Name, got.AuthorName)
	assert.Equal(t, int64(1), got.ID)
}

func TestBookRepo_Constraints(t *testing.T) {
	s := New()
	_, _, books := seed(t, s)
	ctx := context.Background()

	dup := book.Book{Title: books[0].Title, PublicationYear: 2000, AuthorID: books[0].AuthorID}
	assert.ErrorIs(t, s.Books().Create(ctx, &dup), apperr.ErrIntegrity)

	orphan := book.Book{Title: "Orphan", PublicationYear: 2000, AuthorID: 99}
	assert.ErrorIs(t, s.Books().Create(ctx, &orphan), apperr.ErrIntegrity)

	assert.ErrorIs(t, s.Books().Delete(ctx, 99), book.ErrNotFound)
}

func TestBookRepo_ListUsesQuery(t *testing.T) {
	s := New()
	rowling, _, _ := seed(t, s)

	out, total, err := s.Books().List(context.Background(), book.Query{
		AuthorID: &rowling.ID,
		Ordering: []book.OrderKey{{Field: book.OrderPublicationYear, Desc: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, out, 2)
	assert.Equal(t, 1998, out[0].PublicationYear)
	assert.Equal(t, 1997, out[1].PublicationYear)
}

func TestAuthorRepo_DeleteCascades(t *testing.T) {
	s := New()
	rowling, martin, books := seed(t, s)
	ctx := context.Background()

	lib := library.Library{Name: "Central", BookIDs: []int64{books[0].ID, books[2].ID}}
	require.NoError(t, s.Libraries().Create(ctx, &lib))

	require.NoError(t, s.Authors().Delete(ctx, rowling.ID))

	_, err := s.Books().Get(ctx, books[0].ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
	_, err = s.Books().Get(ctx, books[1].ID)
	assert.ErrorIs(t, err, book.ErrNotFound)

	got, err := s.Libraries().Get(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{books[2].ID}, got.BookIDs)

	summaries, err := s.Authors().Books(ctx, martin.ID)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestAuthorRepo_RenameUpdatesBooks(t *testing.T) {
	s := New()
	rowling, _, books := seed(t, s)
	ctx := context.Background()

	rowling.Name = "Robert Galbraith"
	require.NoError(t, s.Authors().Update(ctx, &rowling))

	got, err := s.Books().Get(ctx, books[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert Galbraith", got.AuthorName)
}

func TestLibraryRepo_DeleteKeepsBooks(t *testing.T) {
	s := New()
	_, _, books := seed(t, s)
	ctx := context.Background()

	lib := library.Library{Name: "Central", BookIDs: []int64{books[1].ID, books[0].ID, books[1].ID}}
	require.NoError(t, s.Libraries().Create(ctx, &lib))
	assert.Equal(t, []int64{books[1].ID, books[0].ID}, lib.BookIDs)

	librarian := library.Librarian{Name: "Ada", LibraryID: lib.ID}
	require.NoError(t, s.Libraries().CreateLibrarian(ctx, &librarian))
	second := library.Librarian{Name: "Bob", LibraryID: lib.ID}
	assert.ErrorIs(t, s.Libraries().CreateLibrarian(ctx, &second), apperr.ErrIntegrity)

	require.NoError(t, s.Libraries().Delete(ctx, lib.ID))

	_, err := s.Libraries().GetLibrarian(ctx, librarian.ID)
	assert.ErrorIs(t, err, library.ErrLibrarianNotFound)
	for _, b := range books {
		_, err := s.Books().Get(ctx, b.ID)
		assert.NoError(t, err)
	}
}

func TestLibraryRepo_Links(t *testing.T) {
	s := New()
	_, _, books := seed(t, s)
	ctx := context.Background()
	libs := s.Libraries()

	lib := library.Library{Name: "Branch"}
	require.NoError(t, libs.Create(ctx, &lib))

	require.NoError(t, libs.AddBook(ctx, lib.ID, books[2].ID))
	require.NoError(t, libs.AddBook(ctx, lib.ID, books[0].ID))
	require.NoError(t, libs.AddBook(ctx, lib.ID, books[2].ID))
	assert.ErrorIs(t, libs.AddBook(ctx, lib.ID, 99), library.ErrBookNotFound)

	refs, err := libs.Books(ctx, lib.ID)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, books[2].ID, refs[0].ID)
	assert.Equal(t, "George R.R. Martin", refs[0].AuthorName)

	require.NoError(t, libs.RemoveBook(ctx, lib.ID, books[2].ID))
	assert.ErrorIs(t, libs.RemoveBook(ctx, lib.ID, books[2].ID), library.ErrBookNotInLibrary)

	missing, err := libs.MissingBooks(ctx, []int64{books[0].ID, 42, 43})
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 43}, missing)
}

func TestLibraryRepo_ListPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		l := library.Library{Name: name}
		require.NoError(t, s.Libraries().Create(ctx, &l))
	}

	out, total, err := s.Libraries().List(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Name)

	out, _, err = s.Libraries().List(ctx, 0, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUserRepo(t *testing.T) {
	s := New()
	ctx := context.Background()
	users := s.Users()

	u := user.New("Ann@Example.com", "ann", "hash")
	require.NoError(t, users.Create(ctx, &u))
	assert.NotEmpty(t, u.ID)

	got, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	again := user.New("ann@example.com", "ann2", "hash")
	assert.ErrorIs(t, users.Create(ctx, &again), user.ErrEmailTaken)

	taken, err := users.UsernameTaken(ctx, "ann")
	require.NoError(t, err)
	assert.True(t, taken)

	assert.ErrorIs(t, users.SetRole(ctx, "missing", "Admin"), user.ErrNotFound)
}

func TestBlacklistRepo_Expiry(t *testing.T) {
	s := New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	bl := s.Blacklist()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", "u", now.Add(time.Minute)))
	require.NoError(t, bl.AddToBlacklist(ctx, "jti-old", "u", now.Add(-time.Minute)))

	ok, _ := bl.IsBlacklisted(ctx, "jti-1")
	assert.True(t, ok)
	ok, _ = bl.IsBlacklisted(ctx, "jti-old")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, ok)
}
