package catalog

import (
	"context"
	"math"
)

type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Fields carries the mutable part of an Item for Add and Update.
type Fields struct {
	Name     string
	Category string
	Price    float64
	Quantity int
}

type Store interface {
	Ping(ctx context.Context) error
	Len() int

	Add(f Fields) (Item, error)
	AddExisting(it Item) error
	List() []Item
	Get(id int) (Item, bool)
	Delete(id int) error
	Update(id int, f Fields) (Item, error)

	FindByName(name string) []Item
	FindByCategory(category string) []Item
	FindByPriceRange(min, max float64) []Item

	Purchase(id, amount int) (Item, error)
	Restock(id, amount int) (Item, error)
}

func (f Fields) validate() error {
	if f.Name == "" {
		return invalidf("name is required")
	}
	if math.IsNaN(f.Price) || math.IsInf(f.Price, 0) {
		return invalidf("price must be a finite number")
	}
	if f.Price < 0 {
		return invalidf("price must not be negative")
	}
	if f.Quantity < 0 {
		return invalidf("quantity must not be negative")
	}
	return nil
}
