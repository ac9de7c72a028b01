// Package validator valida os DTOs de entrada com go-playground/validator e formata as
// mensagens por campo (nome do campo = tag json).
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// decimal.Decimal é comparado como float64 nas tags gt/gte/lt/lte.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("decimal_scale", decimalScale)
}

// decimalScale (decimal_scale=N) recusa quantidades com mais de N casas decimais.
// Recebe o float64 produzido pela função de tipo acima; a menor representação do float
// preserva as casas de qualquer valor que caiba em NUMERIC(12,3).
func decimalScale(fl validator.FieldLevel) bool {
	scale, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}
	if fl.Field().Kind() != reflect.Float64 {
		return true
	}
	d := decimal.NewFromFloat(fl.Field().Float())
	return d.Equal(d.Round(int32(scale)))
}

// Validate executa a validação por tags da struct.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converte validator.ValidationErrors em campo -> mensagem.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

// Message junta as mensagens num texto único, em ordem estável de campo.
func Message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Field()+": "+formatFieldError(e))
	}
	return strings.Join(parts, "; ")
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obrigatório"
	case "max":
		return fmt.Sprintf("tamanho máximo é %s", e.Param())
	case "min":
		return fmt.Sprintf("tamanho mínimo é %s", e.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", e.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", e.Param())
	case "lte":
		return fmt.Sprintf("deve ser menor ou igual a %s", e.Param())
	case "decimal_scale":
		return fmt.Sprintf("no máximo %s casas decimais", e.Param())
	case "numeric":
		return "deve ser numérico"
	default:
		return fmt.Sprintf("falhou na regra '%s'", e.Tag())
	}
}
