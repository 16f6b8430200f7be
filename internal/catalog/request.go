package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"SweetShop/pkg/kit"
)

// itemReq keeps every field raw so a missing key can be told apart from a
// zero value, and so numbers may arrive as JSON numbers or numeric strings.
type itemReq struct {
	Name     json.RawMessage `json:"name"`
	Category json.RawMessage `json:"category"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
}

type amountReq struct {
	Quantity json.RawMessage `json:"quantity"`
}

func decodeFields(w http.ResponseWriter, r *http.Request) (Fields, bool) {
	var req itemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return Fields{}, false
	}

	if missing := missingKeys(map[string]json.RawMessage{
		"name":     req.Name,
		"category": req.Category,
		"price":    req.Price,
		"quantity": req.Quantity,
	}); len(missing) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "missing data", map[string]any{"missing": missing})
		return Fields{}, false
	}

	var (
		f   Fields
		err error
	)
	if f.Name, err = rawString(req.Name); err != nil {
		return badField(w, r, "name", err)
	}
	if f.Category, err = rawString(req.Category); err != nil {
		return badField(w, r, "category", err)
	}
	if f.Price, err = rawFloat(req.Price); err != nil {
		return badField(w, r, "price", err)
	}
	if f.Quantity, err = rawInt(req.Quantity); err != nil {
		return badField(w, r, "quantity", err)
	}
	return f, true
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req amountReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return 0, false
	}
	if isAbsent(req.Quantity) {
		kit.WriteError(w, r, http.StatusBadRequest, "missing quantity", nil)
		return 0, false
	}

	n, err := rawInt(req.Quantity)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid data format: quantity "+err.Error(), nil)
		return 0, false
	}
	if n <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "quantity must be positive", nil)
		return 0, false
	}
	return n, true
}

func badField(w http.ResponseWriter, r *http.Request, field string, err error) (Fields, bool) {
	kit.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid data format: %s %v", field, err), nil)
	return Fields{}, false
}

func missingKeys(fields map[string]json.RawMessage) []string {
	var out []string
	for _, k := range []string{"name", "category", "price", "quantity"} {
		if isAbsent(fields[k]) {
			out = append(out, k)
		}
	}
	return out
}

// isAbsent treats a key that was never sent as missing. An explicit null is
// present but fails conversion later.
func isAbsent(raw json.RawMessage) bool {
	return raw == nil
}

func rawString(raw json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", errors.New("must be a string")
	}
	return *s, nil
}

func rawFloat(raw json.RawMessage) (float64, error) {
	text, err := numberText(raw)
	if err != nil {
		return 0, err
	}
	if !decimalLit.MatchString(text) {
		return 0, errors.New("must be a number")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return v, nil
}

func rawInt(raw json.RawMessage) (int, error) {
	text, err := numberText(raw)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.Atoi(text); err == nil {
		return v, nil
	}
	if !decimalLit.MatchString(text) {
		return 0, errors.New("must be a number")
	}

	// Whole-valued forms such as 3.0 or 1e2 are accepted; fractions are not.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, errors.New("must be an integer")
	}
	return int(f), nil
}

// decimalLit rejects the Go-only forms strconv.ParseFloat accepts, like hex
// floats, underscores, inf and nan.
var decimalLit = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numberText returns the literal of a JSON number, or the trimmed contents of
// a JSON string.
func numberText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.New("must be a number")
		}
		return strings.TrimSpace(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return "", errors.New("must be a number")
	}
	return n.String(), nil
}
