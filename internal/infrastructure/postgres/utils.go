package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isLockNotAvailable fila tomada por otra transacción con FOR UPDATE NOWAIT (55P03).
func isLockNotAvailable(err error) bool {
	return hasCode(err, "55P03")
}

// hasCode solo confía en el SQLSTATE del servidor, nunca en el texto del error.
func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
