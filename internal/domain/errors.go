package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound          = errors.New("matéria-prima não encontrada")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("código de barras já cadastrado")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrStorage           = errors.New("falha de armazenamento")
)

// StorageError envolve um erro do driver de banco. errors.Is(err, ErrStorage) é verdadeiro
// e Unwrap expõe o erro original.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError constrói um StorageError para a operação op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsKnown informa se err já pertence à taxonomia do domínio.
func IsKnown(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStorage)
}
