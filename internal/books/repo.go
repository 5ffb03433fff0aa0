package books

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/TejVaidya/book-reviews/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Filter carries the raw query parameters. Precedence is strict first-match:
// BookID, then Title, then Genre, then Author, then YearOfPublish; later
// fields are ignored once an earlier one is set.
type Filter struct {
	BookID        string
	Title         string
	Genre         string
	Author        string
	YearOfPublish string
}

func buildListSQL(f Filter) (string, []any, error) {
	base := `
		SELECT id, title, author, genre, year_of_publish, summary
		FROM books
	`

	switch {
	case strings.TrimSpace(f.BookID) != "":
		id, err := strconv.ParseInt(strings.TrimSpace(f.BookID), 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid book_id %q", f.BookID)
		}
		return base + ` WHERE id = ?`, []any{id}, nil
	case strings.TrimSpace(f.Title) != "":
		return base + ` WHERE LOWER(title) LIKE ?`, []any{like(f.Title)}, nil
	case strings.TrimSpace(f.Genre) != "":
		return base + ` WHERE LOWER(genre) LIKE ?`, []any{like(f.Genre)}, nil
	case strings.TrimSpace(f.Author) != "":
		return base + ` WHERE LOWER(author) LIKE ?`, []any{like(f.Author)}, nil
	case strings.TrimSpace(f.YearOfPublish) != "":
		return base + ` WHERE year_of_publish = ?`, []any{strings.TrimSpace(f.YearOfPublish)}, nil
	default:
		return base, nil, nil
	}
}

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (r *Repo) List(ctx context.Context, f Filter) ([]models.Book, error) {
	sqlStr, args, err := buildListSQL(f)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, sqlStr+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, genre, year_of_publish, summary
		FROM books
		WHERE id = ?
	`, id)

	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *Repo) Create(ctx context.Context, b models.Book) (*models.Book, error) {
	var year any
	if b.YearOfPublish != "" {
		year = b.YearOfPublish
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO books (title, author, genre, year_of_publish, summary)
		VALUES (?, ?, ?, ?, ?)
	`, b.Title, b.Author, b.Genre, year, b.Summary)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete exists for administrative cleanup; reviews go with the book via the
// cascade foreign key.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*models.Book, error) {
	var (
		b       models.Book
		author  sql.NullString
		genre   sql.NullString
		year    sql.NullString
		summary sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &author, &genre, &year, &summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	b.Author = author.String
	b.Genre = genre.String
	b.YearOfPublish = year.String
	b.Summary = summary.String
	return &b, nil
}
