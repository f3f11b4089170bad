package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// ItemsResponse wraps a paginated item list.
type ItemsResponse struct {
	Items  []domain.Item `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListItemsParams defines query parameters for item listing.
type ListItemsParams struct {
	Filter domain.ItemFilter
	SortBy string
	Desc   bool
	Limit  int
	Offset int
}

// ItemRequest contains the fields the API accepts for item create and
// update. Unset pointer fields are left out of the request.
type ItemRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	Priority     *domain.Priority `json:"priority,omitempty"`
	Status       *domain.Status   `json:"status,omitempty"`
	Tags         *[]string        `json:"tags,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Image        *string          `json:"image,omitempty"`
	TargetBudget *decimal.Decimal `json:"target_budget,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
}

// ListItems returns the items matching params.
func (c *Client) ListItems(ctx context.Context, params *ListItemsParams) (*ItemsResponse, error) {
	q := url.Values{}
	f := params.Filter
	for _, v := range f.CategoryIDs {
		q.Add("category", v)
	}
	for _, v := range f.Statuses {
		q.Add("status", string(v))
	}
	for _, v := range f.Priorities {
		q.Add("priority", string(v))
	}
	for _, v := range f.Tags {
		q.Add("tag", v)
	}
	if f.MinPrice != nil {
		q.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("max_price", f.MaxPrice.String())
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if params.SortBy != "" {
		q.Set("sort_by", params.SortBy)
	}
	if params.Desc {
		q.Set("desc", "true")
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}

	path := "/api/v1/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ItemsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetItem returns a single item by ID.
func (c *Client) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	if err := c.get(ctx, "/api/v1/items/"+url.PathEscape(id), &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem creates a new item.
func (c *Client) CreateItem(ctx context.Context, req *ItemRequest) (*domain.Item, error) {
	var created domain.Item
	if err := c.post(ctx, "/api/v1/items", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateItem changes the fields set in req.
func (c *Client) UpdateItem(ctx context.Context, id string, req *ItemRequest) (*domain.Item, error) {
	var updated domain.Item
	if err := c.patch(ctx, "/api/v1/items/"+url.PathEscape(id), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteItem deletes an item by ID.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/items/"+url.PathEscape(id), nil)
}

// ReorderItems sets the manual order of the given items.
func (c *Client) ReorderItems(ctx context.Context, ids []string) error {
	return c.post(ctx, "/api/v1/items/reorder", map[string][]string{"ids": ids}, nil)
}
