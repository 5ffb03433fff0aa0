package books

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/TejVaidya/book-reviews/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		BookID:        c.Query("book_id"),
		Title:         c.Query("title"),
		Genre:         c.Query("genre"),
		Author:        c.Query("author"),
		YearOfPublish: c.Query("year_of_publish"),
	}

	books, err := h.Repo.List(c.Request.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("book lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(books) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No books found"})
		return
	}

	c.JSON(http.StatusOK, books)
}

type createReq struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	YearOfPublish string `json:"year_of_publish"`
	Summary       string `json:"summary"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"title": "Title cannot be empty"})
		return
	}

	book, err := h.Repo.Create(c.Request.Context(), models.Book{
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Genre:         strings.TrimSpace(req.Genre),
		YearOfPublish: strings.TrimSpace(req.YearOfPublish),
		Summary:       req.Summary,
	})
	if err != nil {
		log.Error().Err(err).Msg("create book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, book)
}
