package catalog

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// MemStore keeps the catalog in process memory. Reads and writes go through
// one lock, so check-then-act operations like Purchase are atomic.
type MemStore struct {
	seq Sequence

	mu    sync.RWMutex
	m     map[int]*Item
	order []int
}

func NewMemStore(seq Sequence) *MemStore {
	if seq == nil {
		seq = ProcessSequence()
	}
	return &MemStore{seq: seq, m: map[int]*Item{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *MemStore) Add(f Fields) (Item, error) {
	if err := f.validate(); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it := Item{
		ID:       s.nextFreeID(),
		Name:     f.Name,
		Category: f.Category,
		Price:    f.Price,
		Quantity: f.Quantity,
	}
	s.put(it)
	return it, nil
}

// nextFreeID skips ids already taken through AddExisting. Skipped ids are
// consumed, so the sequence still never hands out the same id twice.
func (s *MemStore) nextFreeID() int {
	for {
		id := s.seq.Next()
		if _, taken := s.m[id]; !taken {
			return id
		}
	}
}

// AddExisting inserts it under its own id. An item already stored under that
// id is replaced in place.
func (s *MemStore) AddExisting(it Item) error {
	if it.ID <= 0 {
		return invalidf("id must be positive")
	}
	if err := (Fields{Name: it.Name, Category: it.Category, Price: it.Price, Quantity: it.Quantity}).validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(it)
	return nil
}

func (s *MemStore) put(it Item) {
	if cur, ok := s.m[it.ID]; ok {
		*cur = it
		return
	}
	s.m[it.ID] = &it
	s.order = append(s.order, it.ID)
}

func (s *MemStore) List() []Item {
	return s.filter(func(Item) bool { return true })
}

func (s *MemStore) Get(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.m[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

func (s *MemStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return notFound(id)
	}
	delete(s.m, id)
	s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })
	return nil
}

func (s *MemStore) Update(id int, f Fields) (Item, error) {
	if err := f.validate(); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.m[id]
	if !ok {
		return Item{}, notFound(id)
	}
	it.Name = f.Name
	it.Category = f.Category
	it.Price = f.Price
	it.Quantity = f.Quantity
	return *it, nil
}

func (s *MemStore) FindByName(name string) []Item {
	return s.filter(func(it Item) bool { return it.Name == name })
}

func (s *MemStore) FindByCategory(category string) []Item {
	return s.filter(func(it Item) bool { return it.Category == category })
}

// FindByPriceRange matches min <= price <= max. An inverted range matches nothing.
func (s *MemStore) FindByPriceRange(min, max float64) []Item {
	return s.filter(func(it Item) bool { return min <= it.Price && it.Price <= max })
}

func (s *MemStore) Purchase(id, amount int) (Item, error) {
	if amount <= 0 {
		return Item{}, invalidf("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.m[id]
	if !ok {
		return Item{}, notFound(id)
	}
	if amount > it.Quantity {
		return Item{}, &Error{
			Kind: KindInsufficientStock,
			Msg:  fmt.Sprintf("not enough stock for %s: available %d, requested %d", it.Name, it.Quantity, amount),
		}
	}
	it.Quantity -= amount
	return *it, nil
}

func (s *MemStore) Restock(id, amount int) (Item, error) {
	if amount <= 0 {
		return Item{}, invalidf("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.m[id]
	if !ok {
		return Item{}, notFound(id)
	}
	if it.Quantity > math.MaxInt-amount {
		return Item{}, invalidf("quantity overflow")
	}
	it.Quantity += amount
	return *it, nil
}

func (s *MemStore) filter(keep func(Item) bool) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		if it := *s.m[id]; keep(it) {
			out = append(out, it)
		}
	}
	return out
}
