package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/model"
)

// resource is the CRUD surface shared by every endpoint.
type resource[T any] struct {
	c    *Client
	path string
}

func (r resource[T]) item(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}

func (r resource[T]) list(ctx context.Context, params model.ListParams) (*model.Page[T], error) {
	var raw json.RawMessage
	err := r.c.do(ctx, http.MethodGet, r.path, params.Values(), nil, &raw)
	if err != nil {
		return nil, err
	}
	return decodePage[T](raw)
}

// decodePage accepts the paginated envelope or a bare array.
func decodePage[T any](raw json.RawMessage) (*model.Page[T], error) {
	page := &model.Page[T]{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		page.Results = []T{}
		return page, nil
	}

	if trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &page.Results)
		if err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		page.Count = len(page.Results)
		return page, nil
	}

	err := json.Unmarshal(trimmed, page)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page, nil
}

func (r resource[T]) get(ctx context.Context, id int64) (*T, error) {
	out := new(T)
	err := r.c.do(ctx, http.MethodGet, r.item(id), nil, nil, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r resource[T]) create(ctx context.Context, in any) (*T, error) {
	out := new(T)
	err := r.c.do(ctx, http.MethodPost, r.path, nil, in, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r resource[T]) update(ctx context.Context, id int64, patch any) (*T, error) {
	out := new(T)
	err := r.c.do(ctx, http.MethodPatch, r.item(id), nil, patch, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r resource[T]) delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}
