package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/pkg/advisor"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// CategoriesHandler handles category CRUD and category statistics.
type CategoriesHandler struct {
	store store.Store
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(s store.Store) *CategoriesHandler {
	return &CategoriesHandler{store: s}
}

// --- Input/Output types ---

// CategoryIDInput identifies a single category.
type CategoryIDInput struct {
	ID string `path:"id" doc:"Category ID"`
}

// CategoryOutput wraps a single category.
type CategoryOutput struct {
	Body domain.Category
}

// ListCategoriesOutput is the response for listing categories.
type ListCategoriesOutput struct {
	Body []domain.Category
}

// CreateCategoryInput is the request for creating a category.
type CreateCategoryInput struct {
	Body struct {
		ID          string `json:"id,omitempty" doc:"Optional stable ID, generated when empty" example:"gadgets"`
		Name        string `json:"name" minLength:"1" example:"Gadgets"`
		Description string `json:"description,omitempty"`
		Color       string `json:"color,omitempty" pattern:"^#[0-9a-fA-F]{6}$" example:"#3b82f6"`
		Icon        string `json:"icon,omitempty" example:"cpu"`
		ParentID    string `json:"parent_id,omitempty"`
		Order       int    `json:"order,omitempty"`
	}
}

// UpdateCategoryInput is the request for changing a category. Omitted
// fields are kept.
type UpdateCategoryInput struct {
	ID   string `path:"id" doc:"Category ID"`
	Body struct {
		Name        *string `json:"name,omitempty" minLength:"1"`
		Description *string `json:"description,omitempty"`
		Color       *string `json:"color,omitempty" pattern:"^#[0-9a-fA-F]{6}$"`
		Icon        *string `json:"icon,omitempty"`
		ParentID    *string `json:"parent_id,omitempty"`
		Order       *int    `json:"order,omitempty"`
	}
}

// CategoryStatsOutput is the response for category statistics.
type CategoryStatsOutput struct {
	Body domain.CategoryStats
}

// --- Handlers ---

// List returns all categories in display order.
func (h *CategoriesHandler) List(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	cats, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing categories: " + err.Error())
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return &ListCategoriesOutput{Body: cats}, nil
}

// Get returns a single category.
func (h *CategoriesHandler) Get(ctx context.Context, input *CategoryIDInput) (*CategoryOutput, error) {
	c, err := h.store.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, apiError("getting category", err)
	}
	return &CategoryOutput{Body: *c}, nil
}

// Create adds a user category.
func (h *CategoriesHandler) Create(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	b := input.Body
	if b.ID != "" {
		if _, err := h.store.GetCategory(ctx, b.ID); err == nil {
			return nil, huma.Error409Conflict("category " + b.ID + " already exists")
		}
	}

	c := domain.Category{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Color:       b.Color,
		Icon:        b.Icon,
		ParentID:    b.ParentID,
		Order:       b.Order,
	}
	if c.Color == "" {
		c.Color = "#6b7280"
	}
	if c.Icon == "" {
		c.Icon = "package"
	}
	if err := h.store.CreateCategory(ctx, &c); err != nil {
		return nil, huma.Error500InternalServerError("creating category: " + err.Error())
	}
	return &CategoryOutput{Body: c}, nil
}

// Update changes a category's fields.
func (h *CategoriesHandler) Update(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	c, err := h.store.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, apiError("getting category", err)
	}

	b := input.Body
	setIf(&c.Name, b.Name)
	setIf(&c.Description, b.Description)
	setIf(&c.Color, b.Color)
	setIf(&c.Icon, b.Icon)
	setIf(&c.ParentID, b.ParentID)
	setIf(&c.Order, b.Order)

	if err := h.store.UpdateCategory(ctx, c); err != nil {
		return nil, apiError("updating category", err)
	}
	return &CategoryOutput{Body: *c}, nil
}

// Delete removes a user category that has no items.
func (h *CategoriesHandler) Delete(ctx context.Context, input *CategoryIDInput) (*struct{}, error) {
	if err := h.store.DeleteCategory(ctx, input.ID); err != nil {
		return nil, apiError("deleting category", err)
	}
	return nil, nil //nolint:nilnil // 204 has no body
}

// Stats summarizes the prices of the category's items.
func (h *CategoriesHandler) Stats(ctx context.Context, input *CategoryIDInput) (*CategoryStatsOutput, error) {
	if _, err := h.store.GetCategory(ctx, input.ID); err != nil {
		return nil, apiError("getting category", err)
	}

	q := &store.ItemQuery{Filter: domain.ItemFilter{CategoryIDs: []string{input.ID}}}
	items, _, err := h.store.ListItems(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing items: " + err.Error())
	}
	return &CategoryStatsOutput{Body: advisor.CategoryStatistics(items, input.ID)}, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// RegisterCategoryRoutes registers category endpoints with the Huma API.
func RegisterCategoryRoutes(api huma.API, h *CategoriesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"categories"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create a category",
		Tags:          []string{"categories"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusConflict},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "get-category",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get a category",
		Tags:        []string{"categories"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update a category",
		Tags:        []string{"categories"},
		Errors:      []int{http.StatusNotFound},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-category",
		Method:        http.MethodDelete,
		Path:          "/api/v1/categories/{id}",
		Summary:       "Delete a category",
		Description:   "Built-in categories and categories that still have items cannot be deleted.",
		Tags:          []string{"categories"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusConflict},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "get-category-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/stats",
		Summary:     "Get category statistics",
		Tags:        []string{"categories"},
		Errors:      []int{http.StatusNotFound},
	}, h.Stats)
}
