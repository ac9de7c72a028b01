// Package inventorytest fornece dublês em memória das portas do caso de uso de matérias-primas
// para testes de aplicação e de handlers HTTP.
package inventorytest

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockUnitRepository = (*Store)(nil)
	_ repository.MovementRepository  = (*Store)(nil)
	_ inventory.TxRunner             = (*Store)(nil)
)

// Store guarda matérias-primas e movimentações em memória e implementa TxRunner com
// rollback por snapshot. Transações são serializadas, emulando o bloqueio de linha.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	units     map[int64]*entity.StockUnit
	movements []*entity.Movement
	nextUnit  int64
	nextMov   int64

	// Fail força o erro informado na operação com o nome do método (ex.: "Append").
	Fail map[string]error
	// Calls conta as chamadas por método.
	Calls map[string]int
}

// NewStore cria um Store vazio.
func NewStore() *Store {
	return &Store{
		units: make(map[int64]*entity.StockUnit),
		Fail:  make(map[string]error),
		Calls: make(map[string]int),
	}
}

// Run executa fn com o próprio Store; em erro restaura o estado anterior.
func (s *Store) Run(ctx context.Context, fn func(
	units repository.StockUnitRepository,
	movements repository.MovementRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := s.hit("Begin"); err != nil {
		return err
	}

	units, movements := s.snapshot()
	if err := fn(s, s); err != nil {
		s.restore(units, movements)
		return err
	}
	if err := s.hit("Commit"); err != nil {
		s.restore(units, movements)
		return err
	}
	return nil
}

// Seed insere uma bobina diretamente, sem passar pelo caso de uso.
func (s *Store) Seed(u entity.StockUnit) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUnit++
	u.ID = s.nextUnit
	s.units[u.ID] = &u
	return u.ID
}

// Movements devolve uma cópia das movimentações da bobina, na ordem de inclusão.
func (s *Store) Movements(stockUnitID int64) []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Movement
	for _, m := range s.movements {
		if m.StockUnitID == stockUnitID {
			out = append(out, *m)
		}
	}
	return out
}

// Unit devolve uma cópia da bobina armazenada.
func (s *Store) Unit(id int64) (entity.StockUnit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return entity.StockUnit{}, false
	}
	return *u, true
}

func (s *Store) Create(_ context.Context, unit *entity.StockUnit) (int64, error) {
	if err := s.hit("Create"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if unit.Barcode != "" {
		for _, u := range s.units {
			if u.Barcode == unit.Barcode {
				return 0, domain.ErrDuplicate
			}
		}
	}
	s.nextUnit++
	cp := *unit
	cp.ID = s.nextUnit
	s.units[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*entity.StockUnit, error) {
	if err := s.hit("GetByID"); err != nil {
		return nil, err
	}
	return s.get(id), nil
}

func (s *Store) GetForUpdate(_ context.Context, id int64) (*entity.StockUnit, error) {
	if err := s.hit("GetForUpdate"); err != nil {
		return nil, err
	}
	return s.get(id), nil
}

func (s *Store) GetByBarcode(_ context.Context, barcode string) (*entity.StockUnit, error) {
	if err := s.hit("GetByBarcode"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.Barcode == barcode {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) List(_ context.Context) ([]*entity.StockUnit, error) {
	if err := s.hit("List"); err != nil {
		return nil, err
	}
	return s.filter(func(*entity.StockUnit) bool { return true }), nil
}

func (s *Store) ListByStatus(_ context.Context, status entity.StockStatus) ([]*entity.StockUnit, error) {
	if err := s.hit("ListByStatus"); err != nil {
		return nil, err
	}
	return s.filter(func(u *entity.StockUnit) bool { return u.Status == status }), nil
}

func (s *Store) Update(_ context.Context, unit *entity.StockUnit) error {
	if err := s.hit("Update"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.ID]; !ok {
		return nil
	}
	if unit.Barcode != "" {
		for id, u := range s.units {
			if id != unit.ID && u.Barcode == unit.Barcode {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *unit
	s.units[unit.ID] = &cp
	return nil
}

func (s *Store) UpdateStock(_ context.Context, id int64, available decimal.Decimal, status entity.StockStatus) error {
	if err := s.hit("UpdateStock"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.units[id]; ok {
		u.AvailableQuantity = available
		u.Status = status
	}
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, id int64, status entity.StockStatus) error {
	if err := s.hit("UpdateStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.units[id]; ok {
		u.Status = status
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	if err := s.hit("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.units, id)
	return nil
}

func (s *Store) DistinctFabricTypes(_ context.Context) ([]string, error) {
	if err := s.hit("DistinctFabricTypes"); err != nil {
		return nil, err
	}
	return s.distinct(func(u *entity.StockUnit) (string, bool) { return u.FabricType, true }), nil
}

func (s *Store) DistinctColors(_ context.Context, fabricType string) ([]string, error) {
	if err := s.hit("DistinctColors"); err != nil {
		return nil, err
	}
	return s.distinct(func(u *entity.StockUnit) (string, bool) {
		return u.Color, fabricType == "" || u.FabricType == fabricType
	}), nil
}

func (s *Store) BarcodeExists(_ context.Context, barcode string) (bool, error) {
	if err := s.hit("BarcodeExists"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Append(_ context.Context, movement *entity.Movement) error {
	if err := s.hit("Append"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[movement.StockUnitID]; !ok {
		return domain.NewStorageError("append movement", errForeignKey)
	}
	s.nextMov++
	movement.ID = s.nextMov
	cp := *movement
	s.movements = append(s.movements, &cp)
	return nil
}

func (s *Store) ListByStockUnit(_ context.Context, stockUnitID int64) ([]*entity.Movement, error) {
	if err := s.hit("ListByStockUnit"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.Movement{}
	for _, m := range s.movements {
		if m.StockUnitID == stockUnitID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) DeleteByStockUnit(_ context.Context, stockUnitID int64) (int64, error) {
	if err := s.hit("DeleteByStockUnit"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.movements[:0:0]
	var removed int64
	for _, m := range s.movements {
		if m.StockUnitID == stockUnitID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.movements = kept
	return removed, nil
}

func (s *Store) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls[op]++
	return s.Fail[op]
}

func (s *Store) get(id int64) *entity.StockUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (s *Store) filter(keep func(*entity.StockUnit) bool) []*entity.StockUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.StockUnit{}
	for _, u := range s.units {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) distinct(pick func(*entity.StockUnit) (string, bool)) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, u := range s.units {
		v, ok := pick(u)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *Store) snapshot() (map[int64]*entity.StockUnit, []*entity.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := make(map[int64]*entity.StockUnit, len(s.units))
	for id, u := range s.units {
		cp := *u
		units[id] = &cp
	}
	movements := make([]*entity.Movement, len(s.movements))
	for i, m := range s.movements {
		cp := *m
		movements[i] = &cp
	}
	return units, movements
}

func (s *Store) restore(units map[int64]*entity.StockUnit, movements []*entity.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = units
	s.movements = movements
}
