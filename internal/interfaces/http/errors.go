package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	pkgvalidator "github.com/jhoicas/materias-primas-api/pkg/validator"
)

// writeError traduz a taxonomia do domínio para status HTTP + dto.ErrorResponse.
// Detalhes de falhas de armazenamento não vão para o cliente.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "matéria-prima não encontrada"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "quantidade insuficiente em estoque"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "código de barras já cadastrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "dados inválidos"})
	case errors.Is(err, domain.ErrStorage):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "falha de armazenamento"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "erro interno"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}

// parseAndValidate lê o body JSON em dst e aplica as tags validate.
// Com ok=false a resposta de erro já foi escrita.
func parseAndValidate(c *fiber.Ctx, dst any) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "corpo inválido")
	}
	if err := pkgvalidator.Validate(dst); err != nil {
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: pkgvalidator.Message(err)})
	}
	return true, nil
}

// ErrorHandler handler de erros do fiber: respostas sempre no formato dto.ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
