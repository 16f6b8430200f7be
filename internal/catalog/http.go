package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SweetShop/pkg/kit"
)

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *Metrics

	// WriteLimit, when set, throttles the mutating API routes.
	WriteLimit *kit.IPRateLimiter
}

type stockResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Item    Item   `json:"item"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.log().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/", s.page)

	r.Route("/api/items", func(ar chi.Router) {
		ar.Get("/", s.list)
		ar.Get("/search", s.search)
		ar.Get("/{id}", s.get)

		ar.Group(func(wr chi.Router) {
			if s.WriteLimit != nil {
				wr.Use(s.WriteLimit.Middleware)
			}
			wr.Post("/", s.create)
			wr.Put("/{id}", s.update)
			wr.Delete("/{id}", s.delete)
			wr.Post("/{id}/purchase", s.purchase)
			wr.Post("/{id}/restock", s.restock)
		})
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.List())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	it, found := s.Store.Get(id)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, notFound(id).Error(), map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}

	it, err := s.Store.Add(f)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.log().Debug("item created", zap.Int("id", it.ID), zap.String("name", it.Name))
	kit.WriteJSON(w, http.StatusCreated, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}

	it, err := s.Store.Update(id, f)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.log().Debug("item updated", zap.Int("id", id))
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := s.Store.Delete(id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.log().Debug("item deleted", zap.Int("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) purchase(w http.ResponseWriter, r *http.Request) {
	s.moveStock(w, r, opPurchase, s.Store.Purchase, "Purchase successful.")
}

func (s *Server) restock(w http.ResponseWriter, r *http.Request) {
	s.moveStock(w, r, opRestock, s.Store.Restock, "Restock successful.")
}

func (s *Server) moveStock(w http.ResponseWriter, r *http.Request, op string, apply func(id, amount int) (Item, error), msg string) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	amount, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	it, err := apply(id, amount)
	s.Metrics.observe(op, amount, err)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.log().Debug("stock moved",
		zap.String("op", op),
		zap.Int("id", id),
		zap.Int("amount", amount),
		zap.Int("quantity", it.Quantity),
	)
	kit.WriteJSON(w, http.StatusOK, stockResp{Success: true, Message: msg, Item: it})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, category := q.Get("name"), q.Get("category")
	minRaw, maxRaw := q.Get("min_price"), q.Get("max_price")

	given := 0
	for _, set := range []bool{q.Has("name"), q.Has("category"), q.Has("min_price") || q.Has("max_price")} {
		if set {
			given++
		}
	}
	if given != 1 {
		kit.WriteError(w, r, http.StatusBadRequest, "exactly one of name, category or min_price/max_price is required", nil)
		return
	}

	switch {
	case q.Has("name"):
		kit.WriteJSON(w, http.StatusOK, s.Store.FindByName(name))
	case q.Has("category"):
		kit.WriteJSON(w, http.StatusOK, s.Store.FindByCategory(category))
	default:
		lo, errLo := strconv.ParseFloat(minRaw, 64)
		hi, errHi := strconv.ParseFloat(maxRaw, 64)
		if errLo != nil || errHi != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "min_price and max_price must both be numbers", nil)
			return
		}
		kit.WriteJSON(w, http.StatusOK, s.Store.FindByPriceRange(lo, hi))
	}
}

// itemID answers 404 for ids that are not integers, the same as an unknown id.
func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "item not found", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch KindOf(err) {
	case KindNotFound:
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case KindInsufficientStock, KindInvalidInput:
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		s.log().Error("catalog operation failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
