package postgres

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/repository"
)

type booksRepo struct{ pool *pgxpool.Pool }

func NewBooks(pool *pgxpool.Pool) repository.Books {
	return &booksRepo{pool: pool}
}

const bookCols = `id, title, author, genre, isbn, publication_date, available, created_at, updated_at`

func (r *booksRepo) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO books(id, title, author, genre, isbn, publication_date, available)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+bookCols,
		b.ID, b.Title, b.Author, b.Genre, b.ISBN, b.PublicationDate, b.Available,
	).Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.ISBN, &b.PublicationDate, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *booksRepo) GetByID(ctx context.Context, id string) (models.Book, error) {
	var b models.Book
	err := r.pool.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.ISBN, &b.PublicationDate, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Book{}, models.ErrBookNotFound
	}
	return b, err
}

func (r *booksRepo) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookCols+` FROM books ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// Search builds one ILIKE predicate per present filter field, ANDed.
// Absent filters are omitted from the query entirely.
func (r *booksRepo) Search(ctx context.Context, f repository.BookFilter, page, size int) ([]models.Book, int, error) {
	ds := goqu.Dialect("postgres").From("books")

	var conds []goqu.Expression
	if f.Title != "" {
		conds = append(conds, goqu.I("title").ILike("%"+f.Title+"%"))
	}
	if f.Author != "" {
		conds = append(conds, goqu.I("author").ILike("%"+f.Author+"%"))
	}
	if f.ISBN != "" {
		conds = append(conds, goqu.I("isbn").ILike("%"+f.ISBN+"%"))
	}
	if f.Genre != "" {
		conds = append(conds, goqu.I("genre").ILike("%"+f.Genre+"%"))
	}
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := ds.
		Select("id", "title", "author", "genre", "isbn", "publication_date", "available", "created_at", "updated_at").
		Order(goqu.I("title").Asc()).
		Limit(uint(size)).
		Offset(uint(page * size)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	return books, total, err
}

func (r *booksRepo) Update(ctx context.Context, b models.Book) (models.Book, error) {
	// The availability flag is owned by the borrowing flow and is left
	// untouched here.
	var out models.Book
	err := r.pool.QueryRow(ctx,
		`UPDATE books SET title=$2, author=$3, genre=$4, isbn=$5, publication_date=$6, updated_at=now()
		 WHERE id=$1
		 RETURNING `+bookCols,
		b.ID, b.Title, b.Author, b.Genre, b.ISBN, b.PublicationDate,
	).Scan(&out.ID, &out.Title, &out.Author, &out.Genre, &out.ISBN, &out.PublicationDate, &out.Available, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Book{}, models.ErrBookNotFound
	}
	return out, err
}

func (r *booksRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrBookNotFound
	}
	return nil
}

func (r *booksRepo) ListOverdue(ctx context.Context) ([]models.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookCols+` FROM books WHERE id IN (
		    SELECT book_id FROM borrow_records WHERE status=$1 AND due_date < CURRENT_DATE
		 ) ORDER BY title ASC`,
		models.StatusBorrowed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows pgx.Rows) ([]models.Book, error) {
	var out []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.ISBN, &b.PublicationDate, &b.Available, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
