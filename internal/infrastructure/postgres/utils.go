package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/materias-primas-api/internal/domain"
)

// isUniqueViolation verifica se o erro é uma violação de constraint única (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// storageErr envolve erros do driver como domain.StorageError; duplicidade vira domain.ErrDuplicate.
func storageErr(op string, err error) error {
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return domain.NewStorageError(op, err)
}

// nullIfEmpty grava NULL para textos vazios (código de barras único só quando presente).
func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
