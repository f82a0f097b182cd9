// Package fifo drains inventory lots oldest-first to compute realized cost of goods sold.
package fifo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"menu-costing/models"
)

// quantityEpsilon absorbs float residue when comparing remaining quantities
const quantityEpsilon = 1e-9

var (
	// ErrSessionClosed is returned by Allocate after Close
	ErrSessionClosed = errors.New("allocation session closed")
	// ErrNoLotSource is returned when a session has nothing to read lots from
	ErrNoLotSource = errors.New("no lot source configured")
)

// LotSource lists and consumes inventory lots. Product receipt lots and preparation
// production lots are distinguished by kind.
type LotSource interface {
	ListOpenLots(ctx context.Context, kind, entityID string, scope models.LotScope) ([]models.Lot, error)
	ConsumeLot(ctx context.Context, lotID string, quantity float64) error
}

// AllocationRequest asks for quantity of one entity within a scope.
// When FallbackUnitCost is set, any shortfall is priced at it instead of left unallocated.
type AllocationRequest struct {
	Kind             string
	EntityID         string
	Quantity         float64
	Scope            models.LotScope
	FallbackUnitCost *decimal.Decimal
}

// Allocator hands out allocation sessions sharing one set of per-entity locks
type Allocator struct {
	source LotSource
	locks  *KeyedMutex
}

// NewAllocator creates an allocator over source. A nil source is allowed when every
// session is opened with NewSessionWithSource.
func NewAllocator(source LotSource) *Allocator {
	return &Allocator{
		source: source,
		locks:  NewKeyedMutex(),
	}
}

// LockKey is the critical-section key for an entity within a scope's warehouse.
// Departments share the warehouse key: a scope without a department reads every
// department's lots, so narrower keys would let two sessions hold the same lot.
func LockKey(kind, entityID string, scope models.LotScope) string {
	return fmt.Sprintf("%s:%s@%s", kind, entityID, scope.WarehouseID)
}

// Session is a caller-owned allocation scope, normally one sale inside one transaction.
// It holds each touched entity's lock and caches its lots until Close.
type Session struct {
	allocator *Allocator
	source    LotSource
	held      map[string]func()
	lots      map[string][]models.Lot
	closed    bool
}

// NewSession opens a session over the allocator's own source
func (a *Allocator) NewSession() *Session {
	return a.NewSessionWithSource(a.source)
}

// NewSessionWithSource opens a session over source, e.g. a repository bound to a transaction
func (a *Allocator) NewSessionWithSource(source LotSource) *Session {
	return &Session{
		allocator: a,
		source:    source,
		held:      make(map[string]func()),
		lots:      make(map[string][]models.Lot),
	}
}

// Acquire takes the locks for keys up front, in sorted order. Sessions that will
// touch several entities call it first so two sessions never wait on each other.
func (s *Session) Acquire(keys ...string) error {
	if s.closed {
		return ErrSessionClosed
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		if _, ok := s.held[key]; !ok {
			s.held[key] = s.allocator.locks.Lock(key)
		}
	}
	return nil
}

// Allocate consumes lots oldest-first until the request is covered or lots run out.
// Each touched lot is persisted through the source before Allocate returns.
func (s *Session) Allocate(ctx context.Context, req AllocationRequest) (*models.AllocationResult, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.source == nil {
		return nil, ErrNoLotSource
	}

	result := &models.AllocationResult{
		Allocations: []models.BatchAllocation{},
		TotalCost:   decimal.Zero,
	}
	if req.Quantity <= 0 {
		return result, nil
	}

	key := LockKey(req.Kind, req.EntityID, req.Scope)
	if _, ok := s.held[key]; !ok {
		s.held[key] = s.allocator.locks.Lock(key)
	}

	lots, err := s.openLots(ctx, key, req)
	if err != nil {
		return nil, err
	}

	need := req.Quantity
	for i := range lots {
		if need <= quantityEpsilon {
			break
		}
		lot := &lots[i]
		if req.Scope.DepartmentID != "" && lot.DepartmentID != req.Scope.DepartmentID {
			continue
		}
		take := min(lot.RemainingQuantity, need)
		if take <= quantityEpsilon {
			continue
		}

		if err := s.source.ConsumeLot(ctx, lot.ID, take); err != nil {
			log.Printf("❌ Allocate: Error consuming lot %s: %v", lot.ID, err)
			return nil, fmt.Errorf("failed to consume lot %s: %w", lot.ID, err)
		}
		lot.RemainingQuantity -= take
		need -= take

		lineCost := lot.UnitCost.Mul(decimal.NewFromFloat(take))
		result.Allocations = append(result.Allocations, models.BatchAllocation{
			BatchID:          lot.ID,
			QuantityConsumed: take,
			UnitCost:         lot.UnitCost,
			LineCost:         lineCost,
		})
		result.AllocatedQuantity += take
		result.TotalCost = result.TotalCost.Add(lineCost)
	}

	if need > quantityEpsilon {
		if req.FallbackUnitCost != nil {
			result.FallbackQuantity = need
			result.FallbackUnitCost = *req.FallbackUnitCost
			result.TotalCost = result.TotalCost.Add(req.FallbackUnitCost.Mul(decimal.NewFromFloat(need)))
			log.Printf("⚠️ Allocate: %s short by %.4f, priced at fallback %s", key, need, req.FallbackUnitCost.String())
		} else {
			result.UnallocatedQuantity = need
			log.Printf("⚠️ Allocate: %s short by %.4f, left unallocated", key, need)
		}
	}

	return result, nil
}

// openLots returns the cached warehouse-wide lots for key, loading and ordering them
// on first use. Department filtering happens in Allocate against the shared cache.
func (s *Session) openLots(ctx context.Context, key string, req AllocationRequest) ([]models.Lot, error) {
	if lots, ok := s.lots[key]; ok {
		return lots, nil
	}

	warehouse := models.LotScope{WarehouseID: req.Scope.WarehouseID}
	fetched, err := s.source.ListOpenLots(ctx, req.Kind, req.EntityID, warehouse)
	if err != nil {
		log.Printf("❌ Allocate: Error listing lots for %s: %v", key, err)
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	lots := make([]models.Lot, 0, len(fetched))
	for _, lot := range fetched {
		if lot.RemainingQuantity > quantityEpsilon {
			lots = append(lots, lot)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].ReceivedAt.Equal(lots[j].ReceivedAt) {
			return lots[i].ID < lots[j].ID
		}
		return lots[i].ReceivedAt.Before(lots[j].ReceivedAt)
	})

	s.lots[key] = lots
	return lots, nil
}

// Close releases every lock held by the session and discards its lot cache.
// Call it after the surrounding transaction commits or rolls back.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for key, unlock := range s.held {
		unlock()
		delete(s.held, key)
	}
	s.lots = nil
}
