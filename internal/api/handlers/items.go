package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/store"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const defaultListLimit = 50

// ItemsHandler handles item CRUD and ordering.
type ItemsHandler struct {
	store  store.Store
	engine *engine.Engine
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(s store.Store, eng *engine.Engine) *ItemsHandler {
	return &ItemsHandler{store: s, engine: eng}
}

// --- Input/Output types ---

// ListItemsInput is the input for listing items with optional filters.
type ListItemsInput struct {
	Category []string `query:"category" doc:"Filter by category IDs"`
	Status   []string `query:"status"   doc:"Filter by status"`
	Priority []string `query:"priority" doc:"Filter by priority"`
	Tag      []string `query:"tag"      doc:"Filter by any of the tags"`
	MinPrice string   `query:"min_price" doc:"Lowest current price, inclusive" example:"100"`
	MaxPrice string   `query:"max_price" doc:"Highest current price, inclusive" example:"2500.50"`
	Search   string   `query:"search"   doc:"Case-insensitive match on name, description and notes"`
	SortBy   string   `query:"sort_by"  doc:"Sort field" enum:"name,price,priority,date_added,category,order,"`
	Desc     bool     `query:"desc"     doc:"Sort descending"`
	Limit    int      `query:"limit"    doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
	Offset   int      `query:"offset"   doc:"Pagination offset" minimum:"0"`
}

// ListItemsOutput is the response for listing items.
type ListItemsOutput struct {
	Body struct {
		Items  []domain.Item `json:"items"`
		Total  int           `json:"total"`
		Limit  int           `json:"limit"`
		Offset int           `json:"offset"`
	}
}

// ItemIDInput identifies a single item.
type ItemIDInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// ItemOutput wraps a single item.
type ItemOutput struct {
	Body domain.Item
}

// CreateItemBody holds the fields accepted when creating an item.
type CreateItemBody struct {
	Name         string           `json:"name" minLength:"1" doc:"Item name" example:"Noise cancelling headphones"`
	Description  string           `json:"description,omitempty"`
	CategoryID   string           `json:"category_id,omitempty" doc:"Category ID, defaults to other" example:"electronics"`
	Priority     domain.Priority  `json:"priority,omitempty" enum:"low,medium,high"`
	Status       domain.Status    `json:"status,omitempty" enum:"wishlist,needed,purchased"`
	Tags         []string         `json:"tags,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Image        string           `json:"image,omitempty"`
	TargetBudget *decimal.Decimal `json:"target_budget,omitempty" doc:"Budget as a decimal string" example:"999.00"`
	Quantity     int              `json:"quantity,omitempty" minimum:"0"`
}

// CreateItemInput is the request for creating an item.
type CreateItemInput struct {
	Body CreateItemBody
}

// UpdateItemBody holds the item fields to change. Omitted fields are kept.
// Sources, history and alerts have their own endpoints.
type UpdateItemBody struct {
	Name         *string          `json:"name,omitempty" minLength:"1"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	Priority     *domain.Priority `json:"priority,omitempty" enum:"low,medium,high"`
	Status       *domain.Status   `json:"status,omitempty" enum:"wishlist,needed,purchased"`
	Tags         *[]string        `json:"tags,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Image        *string          `json:"image,omitempty"`
	TargetBudget *decimal.Decimal `json:"target_budget,omitempty"`
	Quantity     *int             `json:"quantity,omitempty" minimum:"0"`
}

// UpdateItemInput is the request for updating an item.
type UpdateItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body UpdateItemBody
}

// ReorderItemsInput carries the new item order.
type ReorderItemsInput struct {
	Body struct {
		IDs []string `json:"ids" minItems:"1" doc:"Item IDs in their new order"`
	}
}

// --- Handlers ---

// List returns items matching the filters, sorted and paged.
func (h *ItemsHandler) List(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	q, err := input.query()
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	items, total, err := h.store.ListItems(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing items: " + err.Error())
	}
	if items == nil {
		items = []domain.Item{}
	}

	resp := &ListItemsOutput{}
	resp.Body.Items = items
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset
	return resp, nil
}

func (input *ListItemsInput) query() (*store.ItemQuery, error) {
	q := &store.ItemQuery{
		SortBy: input.SortBy,
		Desc:   input.Desc,
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	f := &q.Filter
	f.CategoryIDs = input.Category
	f.Tags = input.Tag
	f.Search = input.Search
	for _, s := range input.Status {
		f.Statuses = append(f.Statuses, domain.Status(s))
	}
	for _, p := range input.Priority {
		f.Priorities = append(f.Priorities, domain.Priority(p))
	}

	var err error
	if f.MinPrice, err = parseOptionalDecimal("min_price", input.MinPrice); err != nil {
		return nil, err
	}
	if f.MaxPrice, err = parseOptionalDecimal("max_price", input.MaxPrice); err != nil {
		return nil, err
	}
	return q, nil
}

func parseOptionalDecimal(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // absent filter
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New(name + " must be a decimal number")
	}
	return &v, nil
}

// Get returns a single item.
func (h *ItemsHandler) Get(ctx context.Context, input *ItemIDInput) (*ItemOutput, error) {
	it, err := h.store.GetItem(ctx, input.ID)
	if err != nil {
		return nil, apiError("getting item", err)
	}
	return &ItemOutput{Body: *it}, nil
}

// Create adds a new item at the end of the list.
func (h *ItemsHandler) Create(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	b := input.Body
	if b.CategoryID != "" {
		if _, err := h.store.GetCategory(ctx, b.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, huma.Error422UnprocessableEntity("unknown category " + b.CategoryID)
			}
			return nil, huma.Error500InternalServerError("checking category: " + err.Error())
		}
	}

	it := domain.Item{
		Name:         b.Name,
		Description:  b.Description,
		CategoryID:   b.CategoryID,
		Priority:     b.Priority,
		Status:       b.Status,
		Tags:         b.Tags,
		Notes:        b.Notes,
		Image:        b.Image,
		TargetBudget: b.TargetBudget,
		Quantity:     b.Quantity,
	}
	if err := h.store.CreateItem(ctx, &it); err != nil {
		return nil, huma.Error500InternalServerError("creating item: " + err.Error())
	}
	return &ItemOutput{Body: it}, nil
}

// Update changes the item's descriptive fields.
func (h *ItemsHandler) Update(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	b := input.Body
	if b.CategoryID != nil {
		if _, err := h.store.GetCategory(ctx, *b.CategoryID); err != nil {
			return nil, apiError("checking category", err)
		}
	}

	patch := &store.ItemPatch{
		Name:         b.Name,
		Description:  b.Description,
		CategoryID:   b.CategoryID,
		Priority:     b.Priority,
		Status:       b.Status,
		Tags:         b.Tags,
		Notes:        b.Notes,
		Image:        b.Image,
		TargetBudget: b.TargetBudget,
		Quantity:     b.Quantity,
	}
	it, err := h.engine.UpdateItem(ctx, input.ID, patch)
	if err != nil {
		return nil, apiError("updating item", err)
	}
	return &ItemOutput{Body: *it}, nil
}

// Delete removes an item.
func (h *ItemsHandler) Delete(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	if err := h.engine.DeleteItem(ctx, input.ID); err != nil {
		return nil, apiError("deleting item", err)
	}
	return nil, nil //nolint:nilnil // 204 has no body
}

// Reorder assigns list positions in the given ID order.
func (h *ItemsHandler) Reorder(ctx context.Context, input *ReorderItemsInput) (*StatusOutput, error) {
	if err := h.store.ReorderItems(ctx, input.Body.IDs); err != nil {
		return nil, apiError("reordering items", err)
	}
	return newStatusOutput("reordered"), nil
}

// RegisterItemRoutes registers item endpoints with the Huma API.
func RegisterItemRoutes(api huma.API, h *ItemsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "List items",
		Description: "Returns items with optional filters for category, status, priority, tags, " +
			"price range and text search, plus sorting and pagination.",
		Tags:   []string{"items"},
		Errors: []int{http.StatusBadRequest},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "create-item",
		Method:        http.MethodPost,
		Path:          "/api/v1/items",
		Summary:       "Create an item",
		Tags:          []string{"items"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "reorder-items",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/reorder",
		Summary:     "Reorder items",
		Description: "Assigns list positions in the given order. Unknown IDs are ignored.",
		Tags:        []string{"items"},
	}, h.Reorder)

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get an item",
		Tags:        []string{"items"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "update-item",
		Method:      http.MethodPatch,
		Path:        "/api/v1/items/{id}",
		Summary:     "Update an item",
		Tags:        []string{"items"},
		Errors:      []int{http.StatusNotFound},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-item",
		Method:        http.MethodDelete,
		Path:          "/api/v1/items/{id}",
		Summary:       "Delete an item",
		Tags:          []string{"items"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.Delete)
}
