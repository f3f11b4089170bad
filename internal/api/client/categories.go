package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// CategoryRequest contains the fields the API accepts for a new category.
type CategoryRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.get(ctx, "/api/v1/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, req *CategoryRequest) (*domain.Category, error) {
	var cat domain.Category
	if err := c.post(ctx, "/api/v1/categories", req, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory deletes a category. Default categories and categories
// still in use are refused by the server.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/categories/"+url.PathEscape(id), nil)
}

// CategoryStats returns the price summary of a category.
func (c *Client) CategoryStats(ctx context.Context, id string) (*domain.CategoryStats, error) {
	var stats domain.CategoryStats
	if err := c.get(ctx, "/api/v1/categories/"+url.PathEscape(id)+"/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
