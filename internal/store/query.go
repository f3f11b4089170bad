package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const (
	maxLimit = 500

	// Sort fields accepted by ItemQuery.SortBy.
	SortByName      = "name"
	SortByPrice     = "price"
	SortByPriority  = "priority"
	SortByDateAdded = "date_added"
	SortByCategory  = "category"
	SortByOrder     = "order"
)

// ItemQuery defines optional filters, sorting and paging for item lists.
type ItemQuery struct {
	Filter domain.ItemFilter
	SortBy string // one of the SortBy constants, default "order"
	Desc   bool
	Limit  int // 0 means no limit
	Offset int
}

// validSortBy lists the accepted SortBy values.
var validSortBy = []string{
	SortByName, SortByPrice, SortByPriority, SortByDateAdded, SortByCategory, SortByOrder,
}

// ValidSortBy reports whether field is an accepted sort field.
func ValidSortBy(field string) bool {
	return field == "" || slices.Contains(validSortBy, field)
}

const baseItemsSelect = `SELECT id, name, description, category_id, priority, status,
	tags, notes, image, target_budget, quantity, sort_order,
	sources, price_history, alerts, date_added, date_modified
FROM items`

// ToSQL builds the data query for the filters that map onto columns. The
// price range depends on source prices held in JSONB and is applied by
// Finish, together with sorting and paging.
func (q *ItemQuery) ToSQL() (dataSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	f := &q.Filter
	if len(f.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("category_id = ANY($%d)", paramIdx))
		args = append(args, f.CategoryIDs)
		paramIdx++
	}

	if len(f.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", paramIdx))
		args = append(args, toStrings(f.Statuses))
		paramIdx++
	}

	if len(f.Priorities) > 0 {
		conditions = append(conditions, fmt.Sprintf("priority = ANY($%d)", paramIdx))
		args = append(args, toStrings(f.Priorities))
		paramIdx++
	}

	if len(f.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags && $%d", paramIdx))
		args = append(args, f.Tags)
		paramIdx++
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%[1]d OR description ILIKE $%[1]d OR notes ILIKE $%[1]d)", paramIdx,
		))
		args = append(args, "%"+escapeLike(term)+"%")
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return baseItemsSelect + whereClause + " ORDER BY sort_order ASC, date_added ASC", args
}

// Finish applies the price range, sorting and paging to items that already
// passed the column filters. categoryName resolves a category id to the
// name used when sorting by category. It returns the page and the total
// number of matching items.
func (q *ItemQuery) Finish(items []domain.Item, categoryName func(string) string) ([]domain.Item, int) {
	matched := slices.DeleteFunc(items, func(it domain.Item) bool {
		return !q.Filter.Match(&it)
	})

	slices.SortStableFunc(matched, q.compare(categoryName))

	total := len(matched)
	offset := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(offset+min(q.Limit, maxLimit), total)
	}
	return matched[offset:end], total
}

func (q *ItemQuery) compare(categoryName func(string) string) func(a, b domain.Item) int {
	col := collate.New(language.Arabic)
	if categoryName == nil {
		categoryName = func(id string) string { return id }
	}

	var by func(a, b *domain.Item) int
	switch q.SortBy {
	case SortByName:
		by = func(a, b *domain.Item) int { return col.CompareString(a.Name, b.Name) }
	case SortByPrice:
		by = func(a, b *domain.Item) int { return priceOrZero(a).Cmp(priceOrZero(b)) }
	case SortByPriority:
		by = func(a, b *domain.Item) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) }
	case SortByDateAdded:
		by = func(a, b *domain.Item) int { return a.DateAdded.Compare(b.DateAdded) }
	case SortByCategory:
		by = func(a, b *domain.Item) int {
			return col.CompareString(categoryName(a.CategoryID), categoryName(b.CategoryID))
		}
	default:
		by = func(a, b *domain.Item) int { return cmp.Compare(a.Order, b.Order) }
	}

	return func(a, b domain.Item) int {
		c := by(&a, &b)
		if q.Desc {
			return -c
		}
		return c
	}
}

func priceOrZero(it *domain.Item) decimal.Decimal {
	if p := it.LowestPrice(); p != nil {
		return *p
	}
	return decimal.Zero
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
