// Package localstore persists the whole store state as a single JSON file.
// It backs deployments that run without PostgreSQL: every repository interface
// is served from one in-memory state guarded by a mutex, flushed to disk after
// each write.
package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/cart"
	"github.com/swiftpos/swiftpos/internal/domain/product"
	"github.com/swiftpos/swiftpos/internal/domain/sale"
	"github.com/swiftpos/swiftpos/internal/domain/store"
)

type productRec struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl,omitempty"`

	ImageContentType string `json:"imageContentType,omitempty"`
	ImageData        []byte `json:"imageData,omitempty"`
}

type saleRec struct {
	ID        string          `json:"id"`
	Items     []lineRec       `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

type lineRec struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
}

type checkoutRec struct {
	ID           int64           `json:"id"`
	BranchCode   string          `json:"branchCode"`
	Category     string          `json:"category"`
	ItemName     string          `json:"itemName"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	RecordedAt   time.Time       `json:"recordedAt"`
}

type categoryRec struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type branchRec struct {
	ID         int64     `json:"id"`
	BranchCode string    `json:"branchCode"`
	InsertedAt time.Time `json:"insertedAt"`
}

type settingsRec struct {
	StoreName   string `json:"storeName"`
	ThemeMode   string `json:"themeMode"`
	AccentColor string `json:"accentColor"`
}

type state struct {
	Products   []productRec  `json:"products"`
	Sales      []saleRec     `json:"sales"`
	Checkouts  []checkoutRec `json:"checkouts"`
	Categories []categoryRec `json:"categories"`
	Branches   []branchRec   `json:"branches"`
	Settings   *settingsRec  `json:"settings,omitempty"`

	NextCategoryID int64 `json:"nextCategoryId"`
	NextBranchID   int64 `json:"nextBranchId"`
	NextCheckoutID int64 `json:"nextCheckoutId"`
}

var (
	_ product.Repository       = (*Store)(nil)
	_ product.ImageRepository  = (*Store)(nil)
	_ sale.Repository          = (*SaleStore)(nil)
	_ sale.RecordRepository    = (*Store)(nil)
	_ store.SettingsRepository = (*Store)(nil)
	_ store.CategoryRepository = (*Store)(nil)
	_ store.BranchRepository   = (*Store)(nil)
)

// Store is the file-backed implementation of all repositories.
type Store struct {
	path string

	mu sync.Mutex
	st state
}

// Open loads the state file at path, creating an empty store when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, st: emptyState()}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "read state file")
	}
	if err := json.Unmarshal(data, &s.st); err != nil {
		return nil, errors.Wrapf(err, "decode state file %s", path)
	}
	return s, nil
}

func emptyState() state {
	return state{
		NextCategoryID: 1,
		NextBranchID:   1,
		NextCheckoutID: 1,
	}
}

// flush writes the current state to disk. Caller holds s.mu. The write goes
// through a temp file and rename so a crash never leaves a torn file.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".swiftpos-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close state file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "replace state file")
	}
	return nil
}

// Reset discards all persisted data and rewrites an empty state file.
func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = emptyState()
	return s.flush()
}

func (s *Store) List(context.Context) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product.Product, 0, len(s.st.Products))
	for _, rec := range s.st.Products {
		out = append(out, rec.toDomain())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.st.Products {
		if rec.ID == id {
			p := rec.toDomain()
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (s *Store) Create(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.st.Products = append(s.st.Products, fromDomain(*p))
	return s.flush()
}

func (s *Store) Update(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.st.Products {
		if rec.ID == p.ID {
			next := fromDomain(*p)
			// Uploaded image bytes survive catalog edits.
			next.ImageContentType = rec.ImageContentType
			next.ImageData = rec.ImageData
			s.st.Products[i] = next
			return s.flush()
		}
	}
	return product.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.st.Products {
		if rec.ID == id {
			s.st.Products = append(s.st.Products[:i], s.st.Products[i+1:]...)
			return s.flush()
		}
	}
	return product.ErrNotFound
}

func (s *Store) SetStock(_ context.Context, id string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.Products {
		if s.st.Products[i].ID == id {
			s.st.Products[i].Stock = stock
			return s.flush()
		}
	}
	return product.ErrNotFound
}

func (s *Store) SetImage(_ context.Context, id, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.Products {
		if s.st.Products[i].ID == id {
			s.st.Products[i].ImageContentType = contentType
			s.st.Products[i].ImageData = append([]byte(nil), data...)
			return s.flush()
		}
	}
	return product.ErrNotFound
}

func (s *Store) GetImage(_ context.Context, id string) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.st.Products {
		if rec.ID == id {
			if len(rec.ImageData) == 0 {
				return "", nil, product.ErrNotFound
			}
			return rec.ImageContentType, append([]byte(nil), rec.ImageData...), nil
		}
	}
	return "", nil, product.ErrNotFound
}

func (rec productRec) toDomain() product.Product {
	return product.Product{
		ID:       rec.ID,
		Name:     rec.Name,
		Price:    rec.Price,
		Category: rec.Category,
		Stock:    rec.Stock,
		ImageURL: rec.ImageURL,
		HasImage: len(rec.ImageData) > 0,
	}
}

func fromDomain(p product.Product) productRec {
	return productRec{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

// SaleStore is the sales view of the file store. Sales live on a separate
// type because its method set would otherwise collide with the product
// repository on the same state.
type SaleStore struct {
	s *Store
}

// Sales returns the sale repository backed by this store.
func (s *Store) Sales() *SaleStore {
	return &SaleStore{s: s}
}

func (v *SaleStore) Create(_ context.Context, sl *sale.Sale) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := saleRec{
		ID:        sl.ID,
		Total:     sl.Total,
		CreatedAt: sl.CreatedAt,
		Items:     make([]lineRec, 0, len(sl.Items)),
	}
	for _, it := range sl.Items {
		rec.Items = append(rec.Items, lineRec(it))
	}
	s.st.Sales = append(s.st.Sales, rec)
	return s.flush()
}

func (v *SaleStore) List(context.Context) ([]sale.Sale, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sale.Sale, 0, len(s.st.Sales))
	for _, rec := range s.st.Sales {
		sl := sale.Sale{
			ID:        rec.ID,
			Total:     rec.Total,
			CreatedAt: rec.CreatedAt,
			Items:     make([]cart.Line, 0, len(rec.Items)),
		}
		for _, it := range rec.Items {
			sl.Items = append(sl.Items, cart.Line(it))
		}
		out = append(out, sl)
	}
	// Newest first, matching the SQL backend.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) RecordCheckout(_ context.Context, rec sale.CheckoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.st.NextCheckoutID
	s.st.NextCheckoutID++
	s.st.Checkouts = append(s.st.Checkouts, checkoutRec{
		ID:           rec.ID,
		BranchCode:   rec.BranchCode,
		Category:     rec.Category,
		ItemName:     rec.ItemName,
		PricePerItem: rec.PricePerItem,
		Quantity:     rec.Quantity,
		Total:        rec.Total,
		RecordedAt:   rec.RecordedAt,
	})
	return s.flush()
}

func (s *Store) ListCheckouts(context.Context) ([]sale.CheckoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sale.CheckoutRecord, 0, len(s.st.Checkouts))
	for _, rec := range s.st.Checkouts {
		out = append(out, sale.CheckoutRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (s *Store) GetSettings(context.Context) (store.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Settings == nil {
		return store.DefaultSettings, nil
	}
	return store.Settings{
		StoreName:   s.st.Settings.StoreName,
		ThemeMode:   store.ThemeMode(s.st.Settings.ThemeMode),
		AccentColor: s.st.Settings.AccentColor,
	}, nil
}

func (s *Store) UpdateSettings(_ context.Context, set store.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Settings = &settingsRec{
		StoreName:   set.StoreName,
		ThemeMode:   string(set.ThemeMode),
		AccentColor: set.AccentColor,
	}
	return s.flush()
}

func (s *Store) ListCategories(context.Context) ([]store.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Category, 0, len(s.st.Categories))
	for _, rec := range s.st.Categories {
		out = append(out, store.Category(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, name string) (*store.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.st.Categories {
		if rec.Name == name {
			return nil, store.ErrDuplicateCategory
		}
	}
	c := store.Category{ID: s.st.NextCategoryID, Name: name}
	s.st.NextCategoryID++
	s.st.Categories = append(s.st.Categories, categoryRec(c))
	if err := s.flush(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, name string) (*store.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.st.Categories {
		if rec.Name == name && rec.ID != id {
			return nil, store.ErrDuplicateCategory
		}
	}
	for i := range s.st.Categories {
		if s.st.Categories[i].ID == id {
			s.st.Categories[i].Name = name
			if err := s.flush(); err != nil {
				return nil, err
			}
			c := store.Category(s.st.Categories[i])
			return &c, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.Categories {
		if s.st.Categories[i].ID == id {
			s.st.Categories = append(s.st.Categories[:i], s.st.Categories[i+1:]...)
			return s.flush()
		}
	}
	return store.ErrCategoryNotFound
}

func (s *Store) ListBranches(context.Context) ([]store.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Branch, 0, len(s.st.Branches))
	for _, rec := range s.st.Branches {
		out = append(out, store.Branch(rec))
	}
	return out, nil
}

func (s *Store) CreateBranch(_ context.Context, code string) (*store.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := store.Branch{ID: s.st.NextBranchID, BranchCode: code, InsertedAt: time.Now().UTC()}
	s.st.NextBranchID++
	s.st.Branches = append(s.st.Branches, branchRec(b))
	if err := s.flush(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) UpdateBranch(_ context.Context, id int64, code string) (*store.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.Branches {
		if s.st.Branches[i].ID == id {
			s.st.Branches[i].BranchCode = code
			if err := s.flush(); err != nil {
				return nil, err
			}
			b := store.Branch(s.st.Branches[i])
			return &b, nil
		}
	}
	return nil, store.ErrBranchNotFound
}

func (s *Store) DeleteBranch(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.Branches {
		if s.st.Branches[i].ID == id {
			s.st.Branches = append(s.st.Branches[:i], s.st.Branches[i+1:]...)
			return s.flush()
		}
	}
	return store.ErrBranchNotFound
}
