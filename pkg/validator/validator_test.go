package validator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	pkgvalidator "github.com/jhoicas/materias-primas-api/pkg/validator"
)

func TestValidate_Corte(t *testing.T) {
	ok := dto.CutRequest{Quantity: decimal.RequireFromString("0.5")}
	assert.NoError(t, pkgvalidator.Validate(&ok))

	for _, q := range []string{"0", "-2"} {
		req := dto.CutRequest{Quantity: decimal.RequireFromString(q)}
		err := pkgvalidator.Validate(&req)
		require.Error(t, err, q)
		fields := pkgvalidator.FormatValidationErrors(err)
		assert.Equal(t, "deve ser maior que 0", fields["quantidade"])
	}
}

func TestValidate_CadastroQuantidadesOpcionais(t *testing.T) {
	assert.NoError(t, pkgvalidator.Validate(&dto.StockUnitRequest{}))

	negative := decimal.NewFromInt(-1)
	err := pkgvalidator.Validate(&dto.StockUnitRequest{TotalQuantity: &negative})
	require.Error(t, err)
	assert.Contains(t, pkgvalidator.FormatValidationErrors(err), "quantidade_total")
}

func TestValidate_TamanhoMaximo(t *testing.T) {
	req := dto.StockUnitRequest{Barcode: strings.Repeat("9", 65)}
	err := pkgvalidator.Validate(&req)
	require.Error(t, err)
	assert.Equal(t, "codigo_barras: tamanho máximo é 64", pkgvalidator.Message(err))
}

func TestFormatValidationErrors_ErroComum(t *testing.T) {
	assert.Empty(t, pkgvalidator.FormatValidationErrors(errors.New("x")))
	assert.Equal(t, "x", pkgvalidator.Message(errors.New("x")))
}

func TestValidate_CasasDecimais(t *testing.T) {
	req := dto.CutRequest{Quantity: decimal.RequireFromString("0.0005")}
	err := pkgvalidator.Validate(&req)
	require.Error(t, err)
	assert.Equal(t, "no máximo 3 casas decimais", pkgvalidator.FormatValidationErrors(err)["quantidade"])

	assert.NoError(t, pkgvalidator.Validate(&dto.CutRequest{Quantity: decimal.RequireFromString("1.250")}))

	available := decimal.RequireFromString("10.0004")
	err = pkgvalidator.Validate(&dto.StockUnitRequest{AvailableQuantity: &available})
	require.Error(t, err)
	assert.Contains(t, pkgvalidator.FormatValidationErrors(err), "quantidade_disponivel")
}
