package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Migration bookkeeping.
const (
	queryCreateSchemaMigrations = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	queryMigrationApplied = `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`

	queryRecordMigration = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// Item queries.
const (
	queryInsertItem = `
		INSERT INTO items (
			id, name, description, category_id, priority, status,
			tags, notes, image, target_budget, quantity, sort_order,
			sources, price_history, alerts, date_added, date_modified
		) VALUES (
			@id, @name, @description, @category_id, @priority, @status,
			@tags, @notes, @image, @target_budget, @quantity, @sort_order,
			@sources, @price_history, @alerts, @date_added, @date_modified
		)`

	queryGetItem = baseItemsSelect + ` WHERE id = $1`

	queryGetItemForUpdate = baseItemsSelect + ` WHERE id = $1 FOR UPDATE`

	queryListAllItems = baseItemsSelect + ` ORDER BY sort_order ASC, date_added ASC`

	queryCountItems = `SELECT COUNT(*) FROM items`

	queryUpdateItem = `
		UPDATE items SET
			name = @name,
			description = @description,
			category_id = @category_id,
			priority = @priority,
			status = @status,
			tags = @tags,
			notes = @notes,
			image = @image,
			target_budget = @target_budget,
			quantity = @quantity,
			sort_order = @sort_order,
			sources = @sources,
			price_history = @price_history,
			alerts = @alerts,
			date_modified = @date_modified
		WHERE id = @id`

	queryDeleteItem = `DELETE FROM items WHERE id = $1`

	querySetItemOrder = `UPDATE items SET sort_order = $2, date_modified = $3 WHERE id = $1`

	queryDeleteAllItems = `DELETE FROM items`
)

// Category queries.
const (
	categoryColumns = `id, name, description, color, icon, parent_id, sort_order,
			is_default, date_created, date_modified`

	queryInsertCategory = `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES (
			@id, @name, @description, @color, @icon, @parent_id, @sort_order,
			@is_default, @date_created, @date_modified
		)`

	queryGetCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	queryListCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order ASC, name ASC`

	queryCountCategories = `SELECT COUNT(*) FROM categories`

	queryUpdateCategory = `
		UPDATE categories SET
			name = @name,
			description = @description,
			color = @color,
			icon = @icon,
			parent_id = @parent_id,
			sort_order = @sort_order,
			date_modified = @date_modified
		WHERE id = @id
		RETURNING is_default, date_created`

	queryCategoryIsDefault = `SELECT is_default FROM categories WHERE id = $1 FOR UPDATE`

	queryCategoryInUse = `SELECT EXISTS(SELECT 1 FROM items WHERE category_id = $1)`

	queryDeleteCategory = `DELETE FROM categories WHERE id = $1`

	queryDeleteAllCategories = `DELETE FROM categories`
)

// Settings queries.
const (
	queryGetSettings = `SELECT data FROM settings WHERE id = 1`

	queryUpsertSettings = `
		INSERT INTO settings (id, data) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`
)
