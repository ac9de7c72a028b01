package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DistinctFabricTypes tipos de tecido distintos, não vazios, em ordem alfabética (pt-BR).
func (uc *StockUnitUseCase) DistinctFabricTypes(ctx context.Context) ([]string, error) {
	values, err := uc.units.DistinctFabricTypes(ctx)
	if err != nil {
		return nil, uc.fail("buscar tipos de tecido", 0, err)
	}
	return sortedDistinct(values), nil
}

// DistinctColors cores distintas de todas as bobinas.
func (uc *StockUnitUseCase) DistinctColors(ctx context.Context) ([]string, error) {
	values, err := uc.units.DistinctColors(ctx, "")
	if err != nil {
		return nil, uc.fail("buscar cores", 0, err)
	}
	return sortedDistinct(values), nil
}

// DistinctColorsForFabricType cores distintas das bobinas de um tipo de tecido.
func (uc *StockUnitUseCase) DistinctColorsForFabricType(ctx context.Context, fabricType string) ([]string, error) {
	if strings.TrimSpace(fabricType) == "" {
		return []string{}, nil
	}
	values, err := uc.units.DistinctColors(ctx, fabricType)
	if err != nil {
		return nil, uc.fail("buscar cores por tipo de tecido", 0, err)
	}
	return sortedDistinct(values), nil
}

// BarcodeExists informa se algum cadastro usa o código (comparado sem espaços nas pontas).
// Código vazio não consulta o banco.
func (uc *StockUnitUseCase) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return false, nil
	}
	exists, err := uc.units.BarcodeExists(ctx, code)
	if err != nil {
		return false, uc.fail("verificar código de barras", 0, err)
	}
	return exists, nil
}

// FindByBarcode busca a bobina pelo código lido no leitor.
func (uc *StockUnitUseCase) FindByBarcode(ctx context.Context, barcode string) (*entity.StockUnit, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil, domain.ErrNotFound
	}
	unit, err := uc.units.GetByBarcode(ctx, code)
	if err != nil {
		return nil, uc.fail("buscar por código de barras", 0, err)
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}

// sortedDistinct remove vazios e repetidos e ordena com a collation do português;
// a ordem do banco depende da collation configurada no servidor.
func sortedDistinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	collate.New(language.BrazilianPortuguese).SortStrings(out)
	return out
}
