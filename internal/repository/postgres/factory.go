package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/libms/library-backend/internal/repository"
)

type Repositories struct {
	Users     repo.Users
	Books     repo.Books
	Borrows   repo.Borrows
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Books:     &booksRepo{pool},
		Borrows:   &borrowsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
