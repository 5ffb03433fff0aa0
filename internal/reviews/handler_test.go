package reviews_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TejVaidya/book-reviews/internal/auth"
	"github.com/TejVaidya/book-reviews/internal/books"
	"github.com/TejVaidya/book-reviews/internal/reviews"
	"github.com/TejVaidya/book-reviews/pkg/database"
	"github.com/TejVaidya/book-reviews/pkg/models"
)

type testEnv struct {
	router  *gin.Engine
	db      *sql.DB
	tokens  auth.TokenService
	users   *auth.Repo
	books   *books.Repo
	reviews *reviews.Repo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))

	tokens := auth.TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "book-reviews-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}

	usersRepo := auth.NewRepo(db)
	booksRepo := books.NewRepo(db)
	reviewsRepo := reviews.NewRepo(db)
	handler := reviews.NewHandler(reviewsRepo, booksRepo)

	router := gin.New()
	handler.RegisterPublicRoutes(router.Group(""))

	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(tokens, usersRepo))
	handler.RegisterProtectedRoutes(protected)

	return &testEnv{
		router:  router,
		db:      db,
		tokens:  tokens,
		users:   usersRepo,
		books:   booksRepo,
		reviews: reviewsRepo,
	}
}

func (e *testEnv) createUser(t *testing.T, name, email string) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "irrelevant-for-these-tests",
	}
	require.NoError(t, e.users.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) createBook(t *testing.T, title string) models.Book {
	t.Helper()
	b, err := e.books.Create(context.Background(), models.Book{Title: title, Author: "Author", Genre: "Genre"})
	require.NoError(t, err)
	return *b
}

func (e *testEnv) accessToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.IssueAccess(userID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) post(t *testing.T, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) reviewCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n))
	return n
}

func TestGetReviewsEmpty404(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/get_reviews")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No reviews found")
}

func TestGetReviewsRendersDisplayNames(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "alice@example.com")
	book := env.createBook(t, "Dune")
	_, err := env.reviews.Create(context.Background(), book.ID, user.ID, 9, "A classic.")
	require.NoError(t, err)

	w := env.get(t, "/get_reviews")
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.ReviewDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Book)
	assert.Equal(t, "Alice", got[0].User)
	assert.Equal(t, 9, got[0].Rating)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestGetReviewsFilterPrecedence(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	bob := env.createUser(t, "Bob", "bob@example.com")
	dune := env.createBook(t, "Dune")
	hobbit := env.createBook(t, "The Hobbit")

	_, err := env.reviews.Create(context.Background(), dune.ID, alice.ID, 9, "")
	require.NoError(t, err)
	_, err = env.reviews.Create(context.Background(), hobbit.ID, bob.ID, 7, "")
	require.NoError(t, err)

	// book_id wins over user_id pointing elsewhere
	w := env.get(t, "/get_reviews?book_id="+strconv.FormatInt(dune.ID, 10)+"&user_id="+bob.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.ReviewDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Book)

	// rating filter is exact
	w = env.get(t, "/get_reviews?rating=7")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "The Hobbit", got[0].Book)
}

func TestGetReviewsPagination(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "alice@example.com")
	book := env.createBook(t, "Dune")
	for i := 0; i < 12; i++ {
		_, err := env.reviews.Create(context.Background(), book.ID, user.ID, (i%10)+1, "")
		require.NoError(t, err)
	}

	w := env.get(t, "/get_reviews?page=1&page_size=5")
	require.Equal(t, http.StatusOK, w.Code)

	var page reviews.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 12, page.Count)
	assert.Len(t, page.Results, 5)
	require.NotNil(t, page.Next)
	assert.Equal(t, 2, *page.Next)
	assert.Nil(t, page.Previous)

	w = env.get(t, "/get_reviews?page=3&page_size=5")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Results, 2)
	assert.Nil(t, page.Next)

	// past the last page
	w = env.get(t, "/get_reviews?page=4&page_size=5")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// page_size capped at 100
	w = env.get(t, "/get_reviews?page=1&page_size=500")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Results, 12)
}

func TestGetReviewsUnpagedIsBareList(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "alice@example.com")
	book := env.createBook(t, "Dune")
	for i := 0; i < 12; i++ {
		_, err := env.reviews.Create(context.Background(), book.ID, user.ID, 5, "")
		require.NoError(t, err)
	}

	w := env.get(t, "/get_reviews")
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.ReviewDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 12)
}

func TestAddReviewRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Dune")

	w := env.post(t, "/add_review", `{"book_id":`+strconv.FormatInt(book.ID, 10)+`,"rating":5}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.reviewCount(t))

	w = env.post(t, "/add_review", `{"book_id":`+strconv.FormatInt(book.ID, 10)+`,"rating":5}`, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.reviewCount(t))
}

func TestAddReviewTokenForMissingUser(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Dune")
	token := env.accessToken(t, uuid.NewString())

	w := env.post(t, "/add_review", `{"book_id":`+strconv.FormatInt(book.ID, 10)+`,"rating":5}`, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.reviewCount(t))
}

func TestAddReviewSuccessOwnerFromToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	bob := env.createUser(t, "Bob", "bob@example.com")
	book := env.createBook(t, "Dune")
	token := env.accessToken(t, alice.ID)

	// a client-supplied user_id must be ignored
	body := `{"book_id":` + strconv.FormatInt(book.ID, 10) + `,"rating":8,"comment":"Great read.","user_id":"` + bob.ID + `"}`
	w := env.post(t, "/add_review", body, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Positive(t, got.ID)
	assert.Equal(t, book.ID, got.BookID)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, 8, got.Rating)
	assert.Equal(t, "Great read.", got.Comment)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAddReviewDefaults(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	book := env.createBook(t, "Dune")
	token := env.accessToken(t, alice.ID)

	w := env.post(t, "/add_review", `{"book_id":`+strconv.FormatInt(book.ID, 10)+`}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Rating)
	assert.Empty(t, got.Comment)
}

func TestAddReviewMissingBookID(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	token := env.accessToken(t, alice.ID)

	w := env.post(t, "/add_review", `{"rating":5}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Book ID is required")
}

func TestAddReviewUnknownBook(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	token := env.accessToken(t, alice.ID)

	w := env.post(t, "/add_review", `{"book_id":9999,"rating":5}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book does not exist")
	assert.Equal(t, 0, env.reviewCount(t))
}

func TestAddReviewRatingOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	book := env.createBook(t, "Dune")
	token := env.accessToken(t, alice.ID)
	bookID := strconv.FormatInt(book.ID, 10)

	for _, rating := range []string{"0", "11", "-3"} {
		w := env.post(t, "/add_review", `{"book_id":`+bookID+`,"rating":`+rating+`}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Rating must be between 1 and 10")
	}
	assert.Equal(t, 0, env.reviewCount(t))
}

func TestDeletingBookCascadesToReviews(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com")
	dune := env.createBook(t, "Dune")
	hobbit := env.createBook(t, "The Hobbit")

	_, err := env.reviews.Create(context.Background(), dune.ID, alice.ID, 9, "")
	require.NoError(t, err)
	_, err = env.reviews.Create(context.Background(), hobbit.ID, alice.ID, 7, "")
	require.NoError(t, err)
	require.Equal(t, 2, env.reviewCount(t))

	ok, err := env.books.Delete(context.Background(), dune.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1, env.reviewCount(t))

	remaining, err := env.reviews.List(context.Background(), reviews.Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "The Hobbit", remaining[0].Book)
}
