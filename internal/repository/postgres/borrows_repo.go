package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libms/library-backend/internal/models"
	"github.com/libms/library-backend/internal/repository"
)

type borrowsRepo struct{ pool *pgxpool.Pool }

func NewBorrows(pool *pgxpool.Pool) repository.Borrows {
	return &borrowsRepo{pool: pool}
}

func (r *borrowsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Borrow flips the availability flag with a conditional update before
// inserting the record. If the flag is already down the update affects zero
// rows and the transaction is rolled back, so two concurrent borrows of the
// same book cannot both commit.
func (r *borrowsRepo) Borrow(ctx context.Context, rec models.BorrowRecord) (models.BorrowRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE books SET available=false, updated_at=now() WHERE id=$1 AND available`,
			rec.BookID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrBookNotAvailable
		}
		return tx.QueryRow(ctx,
			`INSERT INTO borrow_records(id, user_id, book_id, status, borrow_date, due_date)
			 VALUES($1,$2,$3,$4,$5,$6)
			 RETURNING created_at`,
			rec.ID, rec.UserID, rec.BookID, rec.Status, rec.BorrowDate, rec.DueDate,
		).Scan(&rec.CreatedAt)
	})
	if err != nil {
		return models.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *borrowsRepo) Return(ctx context.Context, userID, bookID string, returned time.Time) (models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE borrow_records SET status=$1, return_date=$2
			  WHERE user_id=$3 AND book_id=$4 AND status=$5
			 RETURNING id, user_id, book_id, status, borrow_date, due_date, return_date, created_at`,
			models.StatusReturned, returned, userID, bookID, models.StatusBorrowed,
		).Scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.Status, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrActiveBorrowNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE books SET available=true, updated_at=now() WHERE id=$1`,
			bookID,
		)
		return err
	})
	if err != nil {
		return models.BorrowRecord{}, err
	}
	return rec, nil
}

const recordCols = `br.id, br.user_id, br.book_id, b.title, br.status, br.borrow_date, br.due_date, br.return_date, br.created_at`

func (r *borrowsRepo) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+`
		   FROM borrow_records br JOIN books b ON b.id = br.book_id
		  WHERE br.user_id=$1
		  ORDER BY br.borrow_date DESC, br.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *borrowsRepo) ListAll(ctx context.Context) ([]models.BorrowRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+`
		   FROM borrow_records br JOIN books b ON b.id = br.book_id
		  ORDER BY br.borrow_date DESC, br.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListOverdue evaluates against the persisted status field: only records
// still marked BORROWED with a due date strictly before today qualify.
func (r *borrowsRepo) ListOverdue(ctx context.Context) ([]models.BorrowRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+`
		   FROM borrow_records br JOIN books b ON b.id = br.book_id
		  WHERE br.status=$1 AND br.due_date < CURRENT_DATE
		  ORDER BY br.due_date ASC`,
		models.StatusBorrowed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]models.BorrowRecord, error) {
	var out []models.BorrowRecord
	for rows.Next() {
		var rec models.BorrowRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.BookTitle, &rec.Status, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
