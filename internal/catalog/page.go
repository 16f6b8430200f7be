package catalog

import (
	"bytes"
	"embed"
	"html/template"
	"math"
	"net/http"

	"go.uber.org/zap"

	"SweetShop/pkg/kit"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Items []Item
	Total int
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	items := s.Store.List()

	total := stockTotal(items)

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, pageData{Items: items, Total: total}); err != nil {
		s.log().Error("render index failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// stockTotal saturates at math.MaxInt; each quantity may already be near it.
func stockTotal(items []Item) int {
	total := 0
	for _, it := range items {
		if it.Quantity > math.MaxInt-total {
			return math.MaxInt
		}
		total += it.Quantity
	}
	return total
}
