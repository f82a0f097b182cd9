package fifo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"menu-costing/models"
)

// MemoryLotStore is an in-process LotSource
type MemoryLotStore struct {
	mu   sync.Mutex
	lots map[string]*models.Lot
}

// Ensure MemoryLotStore implements LotSource
var _ LotSource = (*MemoryLotStore)(nil)

// NewMemoryLotStore creates an empty store
func NewMemoryLotStore() *MemoryLotStore {
	return &MemoryLotStore{lots: make(map[string]*models.Lot)}
}

// AddLot stores a lot, assigning an id when missing, and returns the stored copy
func (s *MemoryLotStore) AddLot(lot models.Lot) models.Lot {
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	if lot.InitialQuantity == 0 {
		lot.InitialQuantity = lot.RemainingQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := lot
	s.lots[lot.ID] = &stored
	return stored
}

// Lot returns a copy of the lot with the given id
func (s *MemoryLotStore) Lot(id string) (models.Lot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[id]
	if !ok {
		return models.Lot{}, false
	}
	return *lot, true
}

func (s *MemoryLotStore) ListOpenLots(ctx context.Context, kind, entityID string, scope models.LotScope) ([]models.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lots []models.Lot
	for _, lot := range s.lots {
		if lot.Kind != kind || lot.EntityID != entityID || lot.RemainingQuantity <= 0 {
			continue
		}
		if lot.WarehouseID != scope.WarehouseID {
			continue
		}
		if scope.DepartmentID != "" && lot.DepartmentID != scope.DepartmentID {
			continue
		}
		lots = append(lots, *lot)
	}
	return lots, nil
}

func (s *MemoryLotStore) ConsumeLot(ctx context.Context, lotID string, quantity float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return fmt.Errorf("lot %s not found", lotID)
	}
	if quantity > lot.RemainingQuantity+quantityEpsilon {
		return fmt.Errorf("lot %s has %.4f remaining, cannot consume %.4f", lotID, lot.RemainingQuantity, quantity)
	}
	lot.RemainingQuantity -= quantity
	if lot.RemainingQuantity < quantityEpsilon {
		lot.RemainingQuantity = 0
	}
	return nil
}
