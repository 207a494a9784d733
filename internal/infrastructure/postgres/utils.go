package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner lo implementan pgx.Row y pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// wrapErr traduce errores del driver a errores de dominio.
// unique → ErrDuplicate, check/foreign key → ErrInvalidInput, resto → ErrPersistence.
func wrapErr(op string, err error) error {
	if isUniqueViolation(err) {
		return &domain.Error{Kind: domain.ErrDuplicate, Msg: op + ": registro duplicado", Cause: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return &domain.Error{Kind: domain.ErrInvalidInput, Msg: op + ": viola la restricción " + pgErr.ConstraintName, Cause: err}
		case "23503": // foreign_key_violation
			return &domain.Error{Kind: domain.ErrInvalidInput, Msg: op + ": referencia inexistente (" + pgErr.ConstraintName + ")", Cause: err}
		}
	}
	return domain.Persistence(op, err)
}

// filter arma cláusulas WHERE con placeholders posicionales.
type filter struct {
	conds []string
	args  []any
}

// add agrega una condición; cond usa %[1]d para el número de placeholder ("estado = $%[1]d").
func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

// raw agrega una condición sin argumentos.
func (f *filter) raw(cond string) {
	f.conds = append(f.conds, cond)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page agrega LIMIT/OFFSET; limit <= 0 no limita.
func (f *filter) page(limit, offset int) string {
	if limit <= 0 {
		if offset > 0 {
			f.args = append(f.args, offset)
			return fmt.Sprintf(" OFFSET $%d", len(f.args))
		}
		return ""
	}
	f.args = append(f.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(f.args)-1, len(f.args))
}
