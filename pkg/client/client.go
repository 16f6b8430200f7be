// Package client talks to the sweetshop HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type ItemInput struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type StockResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Item    Item   `json:"item"`
}

var (
	ErrNotFound    = errors.New("item not found")
	ErrRejected    = errors.New("request rejected")
	ErrBadStatus   = errors.New("bad status")
	ErrUnavailable = errors.New("sweetshop unavailable")
)

// APIError carries the server's error message. It unwraps to ErrNotFound for
// 404, ErrRejected for other 4xx and ErrBadStatus otherwise.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status=%d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return ErrRejected
	default:
		return ErrBadStatus
	}
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) List(ctx context.Context) ([]Item, error) {
	var out []Item
	err := c.do(ctx, http.MethodGet, "/api/items", nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id int) (Item, error) {
	var out Item
	err := c.do(ctx, http.MethodGet, itemPath(id), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in ItemInput) (Item, error) {
	var out Item
	err := c.do(ctx, http.MethodPost, "/api/items", in, http.StatusCreated, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int, in ItemInput) (Item, error) {
	var out Item
	err := c.do(ctx, http.MethodPut, itemPath(id), in, http.StatusOK, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, http.StatusNoContent, nil)
}

func (c *Client) Purchase(ctx context.Context, id, qty int) (StockResult, error) {
	var out StockResult
	err := c.do(ctx, http.MethodPost, itemPath(id)+"/purchase", map[string]int{"quantity": qty}, http.StatusOK, &out)
	return out, err
}

func (c *Client) Restock(ctx context.Context, id, qty int) (StockResult, error) {
	var out StockResult
	err := c.do(ctx, http.MethodPost, itemPath(id)+"/restock", map[string]int{"quantity": qty}, http.StatusOK, &out)
	return out, err
}

func (c *Client) FindByName(ctx context.Context, name string) ([]Item, error) {
	return c.search(ctx, url.Values{"name": {name}})
}

func (c *Client) FindByCategory(ctx context.Context, category string) ([]Item, error) {
	return c.search(ctx, url.Values{"category": {category}})
}

func (c *Client) FindByPriceRange(ctx context.Context, min, max float64) ([]Item, error) {
	return c.search(ctx, url.Values{
		"min_price": {strconv.FormatFloat(min, 'f', -1, 64)},
		"max_price": {strconv.FormatFloat(max, 'f', -1, 64)},
	})
}

func (c *Client) search(ctx context.Context, q url.Values) ([]Item, error) {
	var out []Item
	err := c.do(ctx, http.MethodGet, "/api/items/search?"+q.Encode(), nil, http.StatusOK, &out)
	return out, err
}

func itemPath(id int) string {
	return "/api/items/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
