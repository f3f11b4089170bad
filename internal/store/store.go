// Package store defines the datastore abstraction for buying-list.
// All business logic depends on the Store interface, never on concrete
// implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = "1.0.0"

var (
	// ErrNotFound is returned when an item or category does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDefaultCategory is returned when deleting a built-in category.
	ErrDefaultCategory = errors.New("default categories cannot be deleted")

	// ErrCategoryInUse is returned when deleting a category that still has items.
	ErrCategoryInUse = errors.New("category has items")
)

// Store defines all data access operations for buying-list.
type Store interface {
	// Items
	CreateItem(ctx context.Context, it *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, q *ItemQuery) ([]domain.Item, int, error)
	UpdateItem(ctx context.Context, id string, patch *ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ReorderItems(ctx context.Context, ids []string) error

	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Settings
	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, s *domain.Settings) error

	// Bulk
	Export(ctx context.Context) (*Document, error)
	Import(ctx context.Context, doc *Document) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}

// Document is the complete persisted state, used for export and import.
type Document struct {
	Items      []domain.Item     `json:"items"`
	Categories []domain.Category `json:"categories"`
	Settings   domain.Settings   `json:"settings"`
	Version    string            `json:"version"`
}

// ItemPatch carries the fields to change on an item. Nil fields are left as
// they are.
type ItemPatch struct {
	Name         *string              `json:"name,omitempty"`
	Description  *string              `json:"description,omitempty"`
	CategoryID   *string              `json:"category_id,omitempty"`
	Sources      *[]domain.Source     `json:"sources,omitempty"`
	PriceHistory *[]domain.PricePoint `json:"price_history,omitempty"`
	Alerts       *[]domain.Alert      `json:"alerts,omitempty"`
	Priority     *domain.Priority     `json:"priority,omitempty"`
	Status       *domain.Status       `json:"status,omitempty"`
	Tags         *[]string            `json:"tags,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	Image        *string              `json:"image,omitempty"`
	TargetBudget *decimal.Decimal     `json:"target_budget,omitempty"`
	Quantity     *int                 `json:"quantity,omitempty"`
	Order        *int                 `json:"order,omitempty"`
}

// Apply copies the set fields onto it and stamps the modification time.
func (p *ItemPatch) Apply(it *domain.Item, now time.Time) {
	if p == nil {
		return
	}
	setIf(&it.Name, p.Name)
	setIf(&it.Description, p.Description)
	setIf(&it.CategoryID, p.CategoryID)
	setIf(&it.Sources, p.Sources)
	setIf(&it.PriceHistory, p.PriceHistory)
	setIf(&it.Alerts, p.Alerts)
	setIf(&it.Priority, p.Priority)
	setIf(&it.Status, p.Status)
	setIf(&it.Tags, p.Tags)
	setIf(&it.Notes, p.Notes)
	setIf(&it.Image, p.Image)
	setIf(&it.Quantity, p.Quantity)
	setIf(&it.Order, p.Order)
	if p.TargetBudget != nil {
		v := *p.TargetBudget
		it.TargetBudget = &v
	}
	it.DateModified = now
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// prepareNewItem fills the fields a caller may leave empty on create.
func prepareNewItem(it *domain.Item, now time.Time, order int) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.CategoryID == "" {
		it.CategoryID = domain.OtherCategoryID
	}
	if it.Priority == "" {
		it.Priority = domain.PriorityMedium
	}
	if it.Status == "" {
		it.Status = domain.StatusWishlist
	}
	normalizeItem(it)
	it.Order = order
	it.DateAdded = now
	it.DateModified = now
}

// normalizeItem replaces nil collections so they encode as empty arrays.
func normalizeItem(it *domain.Item) {
	if it.Sources == nil {
		it.Sources = []domain.Source{}
	}
	if it.PriceHistory == nil {
		it.PriceHistory = []domain.PricePoint{}
	}
	if it.Alerts == nil {
		it.Alerts = []domain.Alert{}
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	for i := range it.Sources {
		if it.Sources[i].Selectors == nil {
			it.Sources[i].Selectors = []string{}
		}
	}
}

// prepareNewCategory fills identity and timestamps on create.
func prepareNewCategory(c *domain.Category, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.DateCreated = now
	c.DateModified = now
}

// mergeSettings replaces empty settings fields with their defaults.
func mergeSettings(s domain.Settings) domain.Settings {
	out := domain.DefaultSettings()
	if s.DefaultCurrency != "" {
		out.DefaultCurrency = s.DefaultCurrency
	}
	if s.UpdateIntervalMs > 0 {
		out.UpdateIntervalMs = s.UpdateIntervalMs
	}
	if s.Theme != "" {
		out.Theme = s.Theme
	}
	out.NotificationsEnabled = s.NotificationsEnabled
	return out
}

// normalizeDocument fills defaults into an imported or freshly loaded
// document.
func normalizeDocument(doc *Document, now time.Time) {
	if doc.Items == nil {
		doc.Items = []domain.Item{}
	}
	for i := range doc.Items {
		normalizeItem(&doc.Items[i])
	}
	if len(doc.Categories) == 0 {
		doc.Categories = domain.DefaultCategories(now)
	}
	doc.Settings = mergeSettings(doc.Settings)
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
}
