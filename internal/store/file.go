package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// DefaultFilePath is the data file used when none is configured.
const DefaultFilePath = "buying-list-data.json"

// FileStore implements Store on a single JSON document on disk. Every write
// rewrites the file through a temporary file and a rename.
type FileStore struct {
	path string
	now  func() time.Time

	mu  sync.RWMutex
	doc Document
}

// FileStoreOption configures the FileStore.
type FileStoreOption func(*FileStore)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore opens the document at path. A missing file yields the
// default document, which is written on the first change or on Migrate.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		path = DefaultFilePath
	}
	s := &FileStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	doc := Document{Settings: domain.DefaultSettings()}
	data, err := os.ReadFile(path) //nolint:gosec // data path from trusted config
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading data file: %w", err)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding data file %s: %w", path, err)
		}
	}
	normalizeDocument(&doc, s.now())
	s.doc = doc

	return s, nil
}

// Ping checks that the data directory is reachable.
func (s *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("checking data directory: %w", err)
	}
	return nil
}

// Migrate creates the data file when it does not exist yet.
func (s *FileStore) Migrate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return s.save()
}

// CreateItem appends a new item at the end of the list.
func (s *FileStore) CreateItem(_ context.Context, it *domain.Item) error {
	return s.update(func(doc *Document) error {
		prepareNewItem(it, s.now(), len(doc.Items))
		doc.Items = append(doc.Items, cloneItem(it))
		return nil
	})
}

// GetItem returns a copy of the item with the given ID.
func (s *FileStore) GetItem(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.itemIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	it := cloneItem(&s.doc.Items[i])
	return &it, nil
}

// ListItems returns the items matching q and the total match count.
func (s *FileStore) ListItems(_ context.Context, q *ItemQuery) ([]domain.Item, int, error) {
	if q == nil {
		q = &ItemQuery{}
	}

	s.mu.RLock()
	items := make([]domain.Item, len(s.doc.Items))
	for i := range s.doc.Items {
		items[i] = cloneItem(&s.doc.Items[i])
	}
	names := make(map[string]string, len(s.doc.Categories))
	for _, c := range s.doc.Categories {
		names[c.ID] = c.Name
	}
	s.mu.RUnlock()

	page, total := q.Finish(items, func(id string) string { return names[id] })
	return page, total, nil
}

// UpdateItem applies patch to the item and returns the updated copy.
func (s *FileStore) UpdateItem(_ context.Context, id string, patch *ItemPatch) (*domain.Item, error) {
	var out domain.Item
	err := s.update(func(doc *Document) error {
		i := s.itemIndex(id)
		if i < 0 {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		patch.Apply(&doc.Items[i], s.now())
		normalizeItem(&doc.Items[i])
		out = cloneItem(&doc.Items[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes an item.
func (s *FileStore) DeleteItem(_ context.Context, id string) error {
	return s.update(func(doc *Document) error {
		i := s.itemIndex(id)
		if i < 0 {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		doc.Items = slices.Delete(doc.Items, i, i+1)
		return nil
	})
}

// ReorderItems sets each listed item's order to its position in ids.
// Unknown ids are ignored.
func (s *FileStore) ReorderItems(_ context.Context, ids []string) error {
	return s.update(func(doc *Document) error {
		now := s.now()
		for pos, id := range ids {
			if i := s.itemIndex(id); i >= 0 {
				doc.Items[i].Order = pos
				doc.Items[i].DateModified = now
			}
		}
		slices.SortStableFunc(doc.Items, func(a, b domain.Item) int {
			return a.Order - b.Order
		})
		return nil
	})
}

// CreateCategory adds a category.
func (s *FileStore) CreateCategory(_ context.Context, c *domain.Category) error {
	return s.update(func(doc *Document) error {
		prepareNewCategory(c, s.now())
		doc.Categories = append(doc.Categories, *c)
		return nil
	})
}

// GetCategory returns the category with the given ID.
func (s *FileStore) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	c := s.doc.Categories[i]
	return &c, nil
}

// ListCategories returns all categories by ascending order.
func (s *FileStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	cats := slices.Clone(s.doc.Categories)
	s.mu.RUnlock()

	slices.SortStableFunc(cats, func(a, b domain.Category) int {
		return a.Order - b.Order
	})
	return cats, nil
}

// UpdateCategory replaces the editable fields of a category.
func (s *FileStore) UpdateCategory(_ context.Context, c *domain.Category) error {
	return s.update(func(doc *Document) error {
		i := s.categoryIndex(c.ID)
		if i < 0 {
			return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
		}
		cur := &doc.Categories[i]
		c.IsDefault = cur.IsDefault
		c.DateCreated = cur.DateCreated
		c.DateModified = s.now()
		*cur = *c
		return nil
	})
}

// DeleteCategory removes a category that is neither built in nor in use.
func (s *FileStore) DeleteCategory(_ context.Context, id string) error {
	return s.update(func(doc *Document) error {
		i := s.categoryIndex(id)
		if i < 0 {
			return fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		if doc.Categories[i].IsDefault {
			return ErrDefaultCategory
		}
		if slices.ContainsFunc(doc.Items, func(it domain.Item) bool { return it.CategoryID == id }) {
			return ErrCategoryInUse
		}
		doc.Categories = slices.Delete(doc.Categories, i, i+1)
		return nil
	})
}

// GetSettings returns the stored settings.
func (s *FileStore) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.doc.Settings
	return &settings, nil
}

// UpdateSettings replaces the stored settings. Empty fields take defaults.
func (s *FileStore) UpdateSettings(_ context.Context, settings *domain.Settings) error {
	return s.update(func(doc *Document) error {
		doc.Settings = mergeSettings(*settings)
		*settings = doc.Settings
		return nil
	})
}

// Export returns a copy of the whole document.
func (s *FileStore) Export(_ context.Context) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := cloneDocument(&s.doc)
	return &doc, nil
}

// Import replaces the whole document. Missing parts take defaults.
func (s *FileStore) Import(_ context.Context, in *Document) error {
	return s.update(func(doc *Document) error {
		next := cloneDocument(in)
		normalizeDocument(&next, s.now())
		*doc = next
		return nil
	})
}

// update runs fn on the document under the write lock and persists the
// result. The in-memory document is restored when fn or the write fails.
func (s *FileStore) update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := cloneDocument(&s.doc)
	if err := fn(&s.doc); err != nil {
		s.doc = backup
		return err
	}
	if err := s.save(); err != nil {
		s.doc = backup
		return err
	}
	return nil
}

// save writes the document. Callers hold the write lock.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

func (s *FileStore) itemIndex(id string) int {
	return slices.IndexFunc(s.doc.Items, func(it domain.Item) bool { return it.ID == id })
}

func (s *FileStore) categoryIndex(id string) int {
	return slices.IndexFunc(s.doc.Categories, func(c domain.Category) bool { return c.ID == id })
}

func cloneDocument(in *Document) Document {
	out := Document{
		Categories: slices.Clone(in.Categories),
		Settings:   in.Settings,
		Version:    in.Version,
	}
	if in.Items != nil {
		out.Items = make([]domain.Item, len(in.Items))
		for i := range in.Items {
			out.Items[i] = cloneItem(&in.Items[i])
		}
	}
	return out
}

// cloneItem returns a deep copy so callers never share slices or pointers
// with the stored document.
func cloneItem(in *domain.Item) domain.Item {
	out := *in
	out.Tags = slices.Clone(in.Tags)
	out.PriceHistory = slices.Clone(in.PriceHistory)
	out.TargetBudget = clonePtr(in.TargetBudget)

	if in.Sources != nil {
		out.Sources = make([]domain.Source, len(in.Sources))
		for i, src := range in.Sources {
			src.Selectors = slices.Clone(src.Selectors)
			src.CurrentPrice = clonePtr(src.CurrentPrice)
			src.LastUpdated = clonePtr(src.LastUpdated)
			out.Sources[i] = src
		}
	}
	if in.Alerts != nil {
		out.Alerts = make([]domain.Alert, len(in.Alerts))
		for i, a := range in.Alerts {
			a.TriggeredAt = clonePtr(a.TriggeredAt)
			out.Alerts[i] = a
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
