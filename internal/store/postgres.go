package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const defaultPoolSize = 10

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// Sources, history and alerts are stored as JSONB columns on the item row.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations and seeds the default
// categories into an empty categories table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if err := RunMigrations(ctx, s.pool); err != nil {
		return err
	}

	var n int
	if err := s.pool.QueryRow(ctx, queryCountCategories).Scan(&n); err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range domain.DefaultCategories(s.now()) {
		if _, err := s.pool.Exec(ctx, queryInsertCategory, categoryArgs(&c)); err != nil {
			return fmt.Errorf("seeding category %s: %w", c.ID, err)
		}
	}
	return nil
}

// CreateItem inserts a new item at the end of the list.
func (s *PostgresStore) CreateItem(ctx context.Context, it *domain.Item) error {
	var n int
	if err := s.pool.QueryRow(ctx, queryCountItems).Scan(&n); err != nil {
		return fmt.Errorf("counting items: %w", err)
	}
	prepareNewItem(it, s.now(), n)
	return insertItem(ctx, s.pool, it)
}

// GetItem retrieves an item by its ID.
func (s *PostgresStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	it, err := scanItem(s.pool.QueryRow(ctx, queryGetItem, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return it, nil
}

// ListItems queries items with optional filters, returning the page and the
// total count.
func (s *PostgresStore) ListItems(ctx context.Context, q *ItemQuery) ([]domain.Item, int, error) {
	if q == nil {
		q = &ItemQuery{}
	}

	dataSQL, args := q.ToSQL()
	items, err := queryItems(ctx, s.pool, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, 0, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	page, total := q.Finish(items, func(id string) string { return names[id] })
	return page, total, nil
}

// UpdateItem applies patch to the item inside a transaction holding the row
// lock and returns the updated item.
func (s *PostgresStore) UpdateItem(ctx context.Context, id string, patch *ItemPatch) (*domain.Item, error) {
	var out *domain.Item
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		it, err := scanItem(tx.QueryRow(ctx, queryGetItemForUpdate, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("locking item: %w", err)
		}

		patch.Apply(it, s.now())
		normalizeItem(it)

		args, err := itemArgs(it)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, queryUpdateItem, args); err != nil {
			return fmt.Errorf("updating item: %w", err)
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem removes an item by its ID.
func (s *PostgresStore) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteItem, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReorderItems sets each listed item's order to its position in ids.
// Unknown ids are ignored.
func (s *PostgresStore) ReorderItems(ctx context.Context, ids []string) error {
	now := s.now()
	batch := &pgx.Batch{}
	for pos, id := range ids {
		batch.Queue(querySetItemOrder, id, pos, now)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("reordering items: %w", err)
	}
	return nil
}

// CreateCategory inserts a new category.
func (s *PostgresStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	prepareNewCategory(c, s.now())
	if _, err := s.pool.Exec(ctx, queryInsertCategory, categoryArgs(c)); err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by its ID.
func (s *PostgresStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c := &domain.Category{}
	err := scanCategory(s.pool.QueryRow(ctx, queryGetCategory, id), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories by ascending order.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, queryListCategories)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// UpdateCategory replaces the editable fields of a category.
func (s *PostgresStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	c.DateModified = s.now()
	err := s.pool.QueryRow(ctx, queryUpdateCategory, categoryArgs(c)).Scan(&c.IsDefault, &c.DateCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category that is neither built in nor in use.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var isDefault bool
		err := tx.QueryRow(ctx, queryCategoryIsDefault, id).Scan(&isDefault)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("getting category: %w", err)
		}
		if isDefault {
			return ErrDefaultCategory
		}

		var inUse bool
		if err := tx.QueryRow(ctx, queryCategoryInUse, id).Scan(&inUse); err != nil {
			return fmt.Errorf("checking category items: %w", err)
		}
		if inUse {
			return ErrCategoryInUse
		}

		if _, err := tx.Exec(ctx, queryDeleteCategory, id); err != nil {
			return fmt.Errorf("deleting category: %w", err)
		}
		return nil
	})
}

// GetSettings returns the stored settings, or the defaults when none are
// stored yet.
func (s *PostgresStore) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, queryGetSettings).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		settings := domain.DefaultSettings()
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	settings := domain.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	settings = mergeSettings(settings)
	return &settings, nil
}

// UpdateSettings replaces the stored settings. Empty fields take defaults.
func (s *PostgresStore) UpdateSettings(ctx context.Context, settings *domain.Settings) error {
	*settings = mergeSettings(*settings)
	return upsertSettings(ctx, s.pool, settings)
}

// Export returns the whole data set as one document.
func (s *PostgresStore) Export(ctx context.Context) (*Document, error) {
	items, err := queryItems(ctx, s.pool, queryListAllItems)
	if err != nil {
		return nil, err
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Items:      items,
		Categories: cats,
		Settings:   *settings,
		Version:    DocumentVersion,
	}
	normalizeDocument(doc, s.now())
	return doc, nil
}

// Import replaces all items, categories and settings in one transaction.
func (s *PostgresStore) Import(ctx context.Context, in *Document) error {
	doc := cloneDocument(in)
	normalizeDocument(&doc, s.now())

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryDeleteAllItems); err != nil {
			return fmt.Errorf("clearing items: %w", err)
		}
		if _, err := tx.Exec(ctx, queryDeleteAllCategories); err != nil {
			return fmt.Errorf("clearing categories: %w", err)
		}
		for i := range doc.Categories {
			if _, err := tx.Exec(ctx, queryInsertCategory, categoryArgs(&doc.Categories[i])); err != nil {
				return fmt.Errorf("importing category %s: %w", doc.Categories[i].ID, err)
			}
		}
		for i := range doc.Items {
			if err := insertItem(ctx, tx, &doc.Items[i]); err != nil {
				return fmt.Errorf("importing item %s: %w", doc.Items[i].ID, err)
			}
		}
		return upsertSettings(ctx, tx, &doc.Settings)
	})
}

func insertItem(ctx context.Context, q querier, it *domain.Item) error {
	args, err := itemArgs(it)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, queryInsertItem, args); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func upsertSettings(ctx context.Context, q querier, settings *domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if _, err := q.Exec(ctx, queryUpsertSettings, data); err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}

func queryItems(ctx context.Context, q querier, sql string, args ...any) ([]domain.Item, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func itemArgs(it *domain.Item) (pgx.NamedArgs, error) {
	sources, err := json.Marshal(it.Sources)
	if err != nil {
		return nil, fmt.Errorf("marshaling sources: %w", err)
	}
	history, err := json.Marshal(it.PriceHistory)
	if err != nil {
		return nil, fmt.Errorf("marshaling price history: %w", err)
	}
	alerts, err := json.Marshal(it.Alerts)
	if err != nil {
		return nil, fmt.Errorf("marshaling alerts: %w", err)
	}

	budget := decimal.NullDecimal{}
	if it.TargetBudget != nil {
		budget = decimal.NewNullDecimal(*it.TargetBudget)
	}

	return pgx.NamedArgs{
		"id":            it.ID,
		"name":          it.Name,
		"description":   it.Description,
		"category_id":   it.CategoryID,
		"priority":      string(it.Priority),
		"status":        string(it.Status),
		"tags":          it.Tags,
		"notes":         it.Notes,
		"image":         it.Image,
		"target_budget": budget,
		"quantity":      it.Quantity,
		"sort_order":    it.Order,
		"sources":       sources,
		"price_history": history,
		"alerts":        alerts,
		"date_added":    it.DateAdded,
		"date_modified": it.DateModified,
	}, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		it                       domain.Item
		priority, status         string
		budget                   decimal.NullDecimal
		sources, history, alerts []byte
	)
	if err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.CategoryID, &priority, &status,
		&it.Tags, &it.Notes, &it.Image, &budget, &it.Quantity, &it.Order,
		&sources, &history, &alerts, &it.DateAdded, &it.DateModified,
	); err != nil {
		return nil, err
	}

	it.Priority = domain.Priority(priority)
	it.Status = domain.Status(status)
	if budget.Valid {
		it.TargetBudget = &budget.Decimal
	}
	if err := json.Unmarshal(sources, &it.Sources); err != nil {
		return nil, fmt.Errorf("unmarshaling sources: %w", err)
	}
	if err := json.Unmarshal(history, &it.PriceHistory); err != nil {
		return nil, fmt.Errorf("unmarshaling price history: %w", err)
	}
	if err := json.Unmarshal(alerts, &it.Alerts); err != nil {
		return nil, fmt.Errorf("unmarshaling alerts: %w", err)
	}
	normalizeItem(&it)
	return &it, nil
}

func categoryArgs(c *domain.Category) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            c.ID,
		"name":          c.Name,
		"description":   c.Description,
		"color":         c.Color,
		"icon":          c.Icon,
		"parent_id":     c.ParentID,
		"sort_order":    c.Order,
		"is_default":    c.IsDefault,
		"date_created":  c.DateCreated,
		"date_modified": c.DateModified,
	}
}

func scanCategory(row pgx.Row, c *domain.Category) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.ParentID, &c.Order,
		&c.IsDefault, &c.DateCreated, &c.DateModified,
	)
}
