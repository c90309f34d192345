package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swiftpos/swiftpos/internal/domain/store"
)

const (
	getSettingsSQL = `SELECT store_name, theme_mode, accent_color FROM settings WHERE id = 1`

	upsertSettingsSQL = `INSERT INTO settings (id, store_name, theme_mode, accent_color)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET store_name = EXCLUDED.store_name,
		    theme_mode = EXCLUDED.theme_mode,
		    accent_color = EXCLUDED.accent_color`

	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY name`
	createCategorySQL = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	updateCategorySQL = `UPDATE categories SET name = $2 WHERE id = $1`
	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`

	listBranchesSQL = `SELECT id, branch_code, inserted_at FROM branches ORDER BY id`
	createBranchSQL = `INSERT INTO branches (branch_code) VALUES ($1) RETURNING id, inserted_at`
	updateBranchSQL = `UPDATE branches SET branch_code = $2 WHERE id = $1`
	deleteBranchSQL = `DELETE FROM branches WHERE id = $1`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

var (
	_ store.SettingsRepository = (*StoreRepository)(nil)
	_ store.CategoryRepository = (*StoreRepository)(nil)
	_ store.BranchRepository   = (*StoreRepository)(nil)
)

// StoreRepository implements the store configuration repositories backed by
// PostgreSQL: settings, categories, and branches.
type StoreRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository returns a StoreRepository that uses the given pool.
func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// GetSettings returns the store settings, or the defaults when the store has
// never been configured.
func (r *StoreRepository) GetSettings(ctx context.Context) (store.Settings, error) {
	var s store.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(&s.StoreName, (*string)(&s.ThemeMode), &s.AccentColor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.DefaultSettings, nil
		}
		return s, fmt.Errorf("getting settings: %w", err)
	}
	return s, nil
}

// UpdateSettings overwrites the store settings.
func (r *StoreRepository) UpdateSettings(ctx context.Context, s store.Settings) error {
	_, err := r.pool.Exec(ctx, upsertSettingsSQL, s.StoreName, string(s.ThemeMode), s.AccentColor)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *StoreRepository) ListCategories(ctx context.Context) ([]store.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Category, error) {
		var c store.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// CreateCategory inserts a category, rejecting duplicate names.
func (r *StoreRepository) CreateCategory(ctx context.Context, name string) (*store.Category, error) {
	c := store.Category{Name: name}
	err := r.pool.QueryRow(ctx, createCategorySQL, name).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateCategory
		}
		return nil, fmt.Errorf("creating category %q: %w", name, err)
	}
	return &c, nil
}

// UpdateCategory renames a category.
func (r *StoreRepository) UpdateCategory(ctx context.Context, id int64, name string) (*store.Category, error) {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateCategory
		}
		return nil, fmt.Errorf("updating category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, store.ErrCategoryNotFound
	}
	return &store.Category{ID: id, Name: name}, nil
}

// DeleteCategory removes a category.
func (r *StoreRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCategoryNotFound
	}
	return nil
}

// ListBranches returns all branches in insertion order.
func (r *StoreRepository) ListBranches(ctx context.Context) ([]store.Branch, error) {
	rows, err := r.pool.Query(ctx, listBranchesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Branch, error) {
		var b store.Branch
		err := row.Scan(&b.ID, &b.BranchCode, &b.InsertedAt)
		return b, err
	})
}

// CreateBranch inserts a branch code.
func (r *StoreRepository) CreateBranch(ctx context.Context, code string) (*store.Branch, error) {
	b := store.Branch{BranchCode: code}
	err := r.pool.QueryRow(ctx, createBranchSQL, code).Scan(&b.ID, &b.InsertedAt)
	if err != nil {
		return nil, fmt.Errorf("creating branch %q: %w", code, err)
	}
	return &b, nil
}

// UpdateBranch renames a branch code.
func (r *StoreRepository) UpdateBranch(ctx context.Context, id int64, code string) (*store.Branch, error) {
	tag, err := r.pool.Exec(ctx, updateBranchSQL, id, code)
	if err != nil {
		return nil, fmt.Errorf("updating branch %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, store.ErrBranchNotFound
	}
	return &store.Branch{ID: id, BranchCode: code}, nil
}

// DeleteBranch removes a branch.
func (r *StoreRepository) DeleteBranch(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteBranchSQL, id)
	if err != nil {
		return fmt.Errorf("deleting branch %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrBranchNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
