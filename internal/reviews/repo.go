package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TejVaidya/book-reviews/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Filter carries the raw query parameters. Precedence is strict first-match:
// BookID, then UserID, then Rating; all exact matches.
type Filter struct {
	BookID string
	UserID string
	Rating string
}

func buildListSQL(f Filter) (string, []any, error) {
	base := `
		SELECT r.id, b.title, u.name, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		JOIN users u ON u.id = r.user_id
	`

	switch {
	case strings.TrimSpace(f.BookID) != "":
		id, err := strconv.ParseInt(strings.TrimSpace(f.BookID), 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid book_id %q", f.BookID)
		}
		return base + ` WHERE r.book_id = ?`, []any{id}, nil
	case strings.TrimSpace(f.UserID) != "":
		return base + ` WHERE r.user_id = ?`, []any{strings.TrimSpace(f.UserID)}, nil
	case strings.TrimSpace(f.Rating) != "":
		rating, err := strconv.Atoi(strings.TrimSpace(f.Rating))
		if err != nil {
			return "", nil, fmt.Errorf("invalid rating %q", f.Rating)
		}
		return base + ` WHERE r.rating = ?`, []any{rating}, nil
	default:
		return base, nil, nil
	}
}

// List returns the full filtered set rendered read-only: the owning book's
// title and user's name in place of the raw ids. Paging happens above the
// store, on the returned slice.
func (r *Repo) List(ctx context.Context, f Filter) ([]models.ReviewDetail, error) {
	sqlStr, args, err := buildListSQL(f)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, sqlStr+` ORDER BY r.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.ReviewDetail, 0)
	for rows.Next() {
		var (
			d       models.ReviewDetail
			comment sql.NullString
			ts      time.Time
		)
		if err := rows.Scan(&d.ID, &d.Book, &d.User, &d.Rating, &comment, &ts); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		d.Comment = comment.String
		d.CreatedAt = ts
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, bookID int64, userID string, rating int, comment string) (*models.Review, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (book_id, user_id, rating, comment)
		VALUES (?, ?, ?, ?)
	`, bookID, userID, rating, comment)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE id = ?
	`, id)

	var (
		review  models.Review
		comment sql.NullString
		ts      time.Time
	)
	if err := row.Scan(&review.ID, &review.BookID, &review.UserID, &review.Rating, &comment, &ts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	review.Comment = comment.String
	review.CreatedAt = ts
	return &review, nil
}
