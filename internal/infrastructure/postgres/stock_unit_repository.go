package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

const stockUnitColumns = `
	id, COALESCE(tipo_tecido, ''), COALESCE(cor, ''), COALESCE(lote, ''), COALESCE(fornecedor, ''),
	quantidade_total, quantidade_disponivel, COALESCE(unidade, 'm'), COALESCE(localizacao, ''),
	data_entrada, codigo_barras, COALESCE(observacoes, ''), status`

// StockUnitRepo implementação de StockUnitRepository sobre PostgreSQL (usável com pool ou tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// Create insere a bobina e devolve o id gerado.
func (r *StockUnitRepo) Create(ctx context.Context, u *entity.StockUnit) (int64, error) {
	query := `
		INSERT INTO materias_primas (
			tipo_tecido, cor, lote, fornecedor, quantidade_total, quantidade_disponivel,
			unidade, localizacao, data_entrada, codigo_barras, observacoes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		u.FabricType, u.Color, u.Lot, u.Supplier, u.TotalQuantity, u.AvailableQuantity,
		u.Unit, u.Location, u.EntryDate, nullIfEmpty(u.Barcode), u.Notes, string(u.Status),
	).Scan(&id)
	if err != nil {
		return 0, storageErr("create stock unit", err)
	}
	return id, nil
}

// GetByID devolve nil, nil quando o id não existe.
func (r *StockUnitRepo) GetByID(ctx context.Context, id int64) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM materias_primas WHERE id = $1`
	return r.getOne(ctx, "get stock unit", query, id)
}

// GetForUpdate obtém a bobina e bloqueia a linha até o fim da transação (SELECT FOR UPDATE).
func (r *StockUnitRepo) GetForUpdate(ctx context.Context, id int64) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM materias_primas WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "get stock unit for update", query, id)
}

// GetByBarcode busca pelo código de barras exato.
func (r *StockUnitRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM materias_primas WHERE codigo_barras = $1`
	return r.getOne(ctx, "get stock unit by barcode", query, barcode)
}

func (r *StockUnitRepo) List(ctx context.Context) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM materias_primas ORDER BY id`
	return r.getMany(ctx, "list stock units", query)
}

func (r *StockUnitRepo) ListByStatus(ctx context.Context, status entity.StockStatus) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM materias_primas WHERE status = $1 ORDER BY id`
	return r.getMany(ctx, "list stock units by status", query, string(status))
}

// Update regrava os campos editáveis; quantidade_total não é alterada.
func (r *StockUnitRepo) Update(ctx context.Context, u *entity.StockUnit) error {
	query := `
		UPDATE materias_primas SET
			tipo_tecido = $2, cor = $3, lote = $4, fornecedor = $5, quantidade_disponivel = $6,
			unidade = $7, localizacao = $8, data_entrada = $9, codigo_barras = $10,
			observacoes = $11, status = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.FabricType, u.Color, u.Lot, u.Supplier, u.AvailableQuantity,
		u.Unit, u.Location, u.EntryDate, nullIfEmpty(u.Barcode), u.Notes, string(u.Status),
	)
	if err != nil {
		return storageErr("update stock unit", err)
	}
	return nil
}

// UpdateStock grava saldo e status numa única instrução.
func (r *StockUnitRepo) UpdateStock(ctx context.Context, id int64, available decimal.Decimal, status entity.StockStatus) error {
	query := `UPDATE materias_primas SET quantidade_disponivel = $2, status = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, available, string(status)); err != nil {
		return storageErr("update stock", err)
	}
	return nil
}

func (r *StockUnitRepo) UpdateStatus(ctx context.Context, id int64, status entity.StockStatus) error {
	query := `UPDATE materias_primas SET status = $2 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, id, string(status)); err != nil {
		return storageErr("update status", err)
	}
	return nil
}

func (r *StockUnitRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM materias_primas WHERE id = $1`, id); err != nil {
		return storageErr("delete stock unit", err)
	}
	return nil
}

func (r *StockUnitRepo) DistinctFabricTypes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT tipo_tecido FROM materias_primas
		WHERE tipo_tecido IS NOT NULL AND btrim(tipo_tecido) <> ''`
	return r.getStrings(ctx, "distinct fabric types", query)
}

// DistinctColors cores distintas; fabricType vazio considera todas as bobinas.
func (r *StockUnitRepo) DistinctColors(ctx context.Context, fabricType string) ([]string, error) {
	if fabricType == "" {
		query := `
			SELECT DISTINCT cor FROM materias_primas
			WHERE cor IS NOT NULL AND btrim(cor) <> ''`
		return r.getStrings(ctx, "distinct colors", query)
	}
	query := `
		SELECT DISTINCT cor FROM materias_primas
		WHERE tipo_tecido = $1 AND cor IS NOT NULL AND btrim(cor) <> ''`
	return r.getStrings(ctx, "distinct colors by fabric type", query, fabricType)
}

func (r *StockUnitRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM materias_primas WHERE codigo_barras = $1)`, barcode,
	).Scan(&exists)
	if err != nil {
		return false, storageErr("barcode exists", err)
	}
	return exists, nil
}

func (r *StockUnitRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockUnit, error) {
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return u, nil
}

func (r *StockUnitRepo) getMany(ctx context.Context, op, query string, args ...any) ([]*entity.StockUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	list := []*entity.StockUnit{}
	for rows.Next() {
		u, err := scanStockUnit(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

func (r *StockUnitRepo) getStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr(op, err)
	}
	return values, nil
}

func scanStockUnit(row pgx.Row) (*entity.StockUnit, error) {
	var (
		u       entity.StockUnit
		barcode *string
		status  string
	)
	err := row.Scan(
		&u.ID, &u.FabricType, &u.Color, &u.Lot, &u.Supplier,
		&u.TotalQuantity, &u.AvailableQuantity, &u.Unit, &u.Location,
		&u.EntryDate, &barcode, &u.Notes, &status,
	)
	if err != nil {
		return nil, err
	}
	u.Barcode = derefString(barcode)
	u.Status = entity.StockStatus(status)
	return &u, nil
}
