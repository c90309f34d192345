// Package store holds the single-store configuration: display name, theming,
// the category list used by the catalog, and the branch codes that attribute
// checkout records.
package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrCategoryNotFound is returned when a category ID does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDuplicateCategory is returned when creating a category whose name
	// already exists.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrBranchNotFound is returned when a branch ID does not exist.
	ErrBranchNotFound = errors.New("branch not found")
)

// ThemeMode is the light/dark preference of the register screens.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Settings is the store-wide display configuration.
type Settings struct {
	StoreName   string
	ThemeMode   ThemeMode
	AccentColor string
}

// DefaultSettings are used until the store is configured.
var DefaultSettings = Settings{
	StoreName:   "My POS Store",
	ThemeMode:   ThemeLight,
	AccentColor: "orange",
}

// Category is a named product grouping.
type Category struct {
	ID   int64
	Name string
}

// Branch is a physical location code used to attribute checkout records.
type Branch struct {
	ID         int64
	BranchCode string
	InsertedAt time.Time
}

// SettingsRepository persists the store settings as a single record.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, s Settings) error
}

// CategoryRepository persists the category list.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// BranchRepository persists the branch list.
type BranchRepository interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	CreateBranch(ctx context.Context, code string) (*Branch, error)
	UpdateBranch(ctx context.Context, id int64, code string) (*Branch, error)
	DeleteBranch(ctx context.Context, id int64) error
}
