package reviews

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/TejVaidya/book-reviews/internal/auth"
	"github.com/TejVaidya/book-reviews/internal/books"
)

type Handler struct {
	Repo  *Repo
	Books *books.Repo
}

func NewHandler(repo *Repo, booksRepo *books.Repo) *Handler {
	return &Handler{Repo: repo, Books: booksRepo}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/get_reviews", h.list)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/add_review", h.create)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		BookID: c.Query("book_id"),
		UserID: c.Query("user_id"),
		Rating: c.Query("rating"),
	}

	reviews, err := h.Repo.List(c.Request.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("review lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(reviews) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reviews found"})
		return
	}

	// the envelope only applies when a page was asked for; otherwise the
	// whole filtered set goes back as-is
	pageRaw := strings.TrimSpace(c.Query("page"))
	if pageRaw == "" {
		c.JSON(http.StatusOK, reviews)
		return
	}

	page, err := strconv.Atoi(pageRaw)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page"})
		return
	}
	pageSize := parseInt(c.Query("page_size"), DefaultPageSize)

	p, err := Paginate(reviews, page, pageSize)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page"})
		return
	}

	c.JSON(http.StatusOK, p)
}

type createReq struct {
	BookID  int64  `json:"book_id"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.BookID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	book, err := h.Books.GetByID(c.Request.Context(), req.BookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book does not exist"})
		return
	}

	rating := 1
	if req.Rating != nil {
		rating = *req.Rating
	}
	if rating < 1 || rating > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"rating": "Rating must be between 1 and 10"})
		return
	}

	// owner comes from the token, never from the body
	review, err := h.Repo.Create(c.Request.Context(), req.BookID, claims.UserID, rating, req.Comment)
	if err != nil {
		log.Error().Err(err).Msg("create review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
