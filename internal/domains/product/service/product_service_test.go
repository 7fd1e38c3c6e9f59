package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/repository"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/pkg/database"
)

// ---- fakes ----

type stateful interface {
	snapshot()
	restore()
}

// fakeTxManager snapshots the in-memory stores on begin and restores
// them when the body errors or the commit is forced to fail, mirroring
// a database rollback.
type fakeTxManager struct {
	stores     []stateful
	failCommit bool
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	for _, s := range m.stores {
		s.snapshot()
	}
	if err := fn(ctx); err != nil {
		for _, s := range m.stores {
			s.restore()
		}
		return err
	}
	if m.failCommit {
		for _, s := range m.stores {
			s.restore()
		}
		return fmt.Errorf("%w: connection lost", database.ErrCommitFailed)
	}
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	saved    map[uuid.UUID]model.Product
	prices   *fakePriceRepo
	images   *fakeImageService
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]model.Product{}}
}

func (r *fakeProductRepo) snapshot() {
	r.saved = map[uuid.UUID]model.Product{}
	for k, v := range r.products {
		r.saved[k] = v
	}
}

func (r *fakeProductRepo) restore() { r.products = r.saved }

func (r *fakeProductRepo) populate(p model.Product) *model.Product {
	if r.prices != nil {
		p.LatestPrice = r.prices.latestFor(p.ID)
	}
	if r.images != nil {
		if img, ok := r.images.attached[p.ID]; ok {
			copied := img
			p.Image = &copied
		}
	}
	return &p
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, model.ErrProductNotFound
	}
	return r.populate(p), nil
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug && p.DeletedAt == nil {
			return r.populate(p), nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (r *fakeProductRepo) FindByName(_ context.Context, name string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == name && p.DeletedAt == nil {
			return r.populate(p), nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ListFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []model.Product{}
	for _, p := range r.products {
		if p.DeletedAt != nil {
			continue
		}
		if filter.NormalizedQuery != "" && !strings.Contains(p.NormalizeName, filter.NormalizedQuery) {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.IsHidden != nil && (p.HiddenAt != nil) != *filter.IsHidden {
			continue
		}
		matched = append(matched, *r.populate(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	stored := *p
	stored.LatestPrice = nil
	stored.Image = nil
	r.products[p.ID] = stored
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.DeletedAt != nil {
		return model.ErrProductNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	r.products[id] = p
	return nil
}

func (r *fakeProductRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return ok && p.DeletedAt == nil, nil
}

func (r *fakeProductRepo) ExistsByNameOrSlug(_ context.Context, name, slug string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.DeletedAt != nil {
			continue
		}
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.Name == name || p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakePriceRepo struct {
	entries []model.PriceHistory
	saved   []model.PriceHistory
}

func (r *fakePriceRepo) snapshot() { r.saved = append([]model.PriceHistory{}, r.entries...) }
func (r *fakePriceRepo) restore()  { r.entries = r.saved }

func (r *fakePriceRepo) latestFor(productID uuid.UUID) *model.PriceHistory {
	var latest *model.PriceHistory
	for i := range r.entries {
		e := r.entries[i]
		if e.ProductID != productID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = &e
		}
	}
	return latest
}

func (r *fakePriceRepo) Create(_ context.Context, ph *model.PriceHistory) error {
	r.entries = append(r.entries, *ph)
	return nil
}

func (r *fakePriceRepo) FindAll(_ context.Context) ([]model.PriceHistory, error) {
	return append([]model.PriceHistory{}, r.entries...), nil
}

func (r *fakePriceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceHistory, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, model.ErrPriceHistoryNotFound
}

func (r *fakePriceRepo) FindAllByProduct(_ context.Context, productID uuid.UUID) ([]model.PriceHistory, error) {
	out := []model.PriceHistory{}
	for _, e := range r.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePriceRepo) FindLatestByProduct(_ context.Context, productID uuid.UUID) (*model.PriceHistory, error) {
	return r.latestFor(productID), nil
}

// fakeImageService records call order so tests can assert that the
// remote delete happens before the product row goes away.
type fakeImageService struct {
	attached   map[uuid.UUID]model.ProductImage
	saved      map[uuid.UUID]model.ProductImage
	uploads    []string
	removals   []string
	callLog    *[]string
	failUpload bool
}

func newFakeImageService(callLog *[]string) *fakeImageService {
	return &fakeImageService{attached: map[uuid.UUID]model.ProductImage{}, callLog: callLog}
}

func (s *fakeImageService) snapshot() {
	s.saved = map[uuid.UUID]model.ProductImage{}
	for k, v := range s.attached {
		s.saved[k] = v
	}
}

func (s *fakeImageService) restore() { s.attached = s.saved }

func (s *fakeImageService) logCall(call string) {
	if s.callLog != nil {
		*s.callLog = append(*s.callLog, call)
	}
}

func (s *fakeImageService) Upload(_ context.Context, productID uuid.UUID, file *multipart.FileHeader) (*storage.UploadResult, string, error) {
	if s.failUpload {
		return nil, "", fmt.Errorf("%w: storage unreachable", model.ErrUploadFailed)
	}
	publicID := fmt.Sprintf("products/%s/v1712000000/upload-%d.jpg", productID, len(s.uploads))
	s.uploads = append(s.uploads, publicID)
	s.logCall("upload:" + publicID)
	return &storage.UploadResult{
		URL:      "http://assets.local/" + publicID,
		PublicID: publicID,
		Version:  1712000000,
		Bytes:    1024,
		Format:   "jpg",
	}, file.Filename, nil
}

func (s *fakeImageService) AttachUpload(_ context.Context, productID uuid.UUID, upload *storage.UploadResult, displayName string) (*model.ProductImage, error) {
	now := time.Now()
	img := model.ProductImage{
		ID:           uuid.New(),
		ProductID:    productID,
		PublicID:     upload.PublicID,
		OriginalPath: upload.URL,
		MediumPath:   MediumVariant(upload.URL),
		SmallPath:    SmallVariant(upload.URL),
		DisplayName:  displayName,
		Bytes:        upload.Bytes,
		Format:       upload.Format,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.attached[productID] = img
	s.logCall("attach:" + upload.PublicID)
	return &img, nil
}

func (s *fakeImageService) Create(ctx context.Context, productID uuid.UUID, file *multipart.FileHeader) (*model.ProductImage, error) {
	upload, displayName, err := s.Upload(ctx, productID, file)
	if err != nil {
		return nil, err
	}
	return s.AttachUpload(ctx, productID, upload, displayName)
}

func (s *fakeImageService) RemoveByPublicID(_ context.Context, publicID string) error {
	for productID, img := range s.attached {
		if img.PublicID == publicID {
			delete(s.attached, productID)
			s.removals = append(s.removals, publicID)
			s.logCall("remove:" + publicID)
			return nil
		}
	}
	return model.ErrImageNotFound
}

func (s *fakeImageService) FindOneByProductID(_ context.Context, productID uuid.UUID) (*model.ProductImage, error) {
	img, ok := s.attached[productID]
	if !ok {
		return nil, model.ErrImageNotFound
	}
	return &img, nil
}

type fakeCache struct{}

func (fakeCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (fakeCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (fakeCache) Delete(context.Context, ...string) error     { return nil }
func (fakeCache) DeletePattern(context.Context, string) error { return nil }
func (fakeCache) Ping(context.Context) error                  { return nil }

type enqueuedTask struct {
	taskType string
	payload  interface{}
}

type fakeEnqueuer struct {
	tasks []enqueuedTask
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, taskType string, payload interface{}, _ ...asynq.Option) error {
	e.tasks = append(e.tasks, enqueuedTask{taskType: taskType, payload: payload})
	return nil
}

// ---- harness ----

type fixture struct {
	products *fakeProductRepo
	prices   *fakePriceRepo
	images   *fakeImageService
	tx       *fakeTxManager
	enqueuer *fakeEnqueuer
	callLog  []string
	service  Service
}

func newFixture() *fixture {
	f := &fixture{}
	f.products = newFakeProductRepo()
	f.prices = &fakePriceRepo{}
	f.images = newFakeImageService(&f.callLog)
	f.products.prices = f.prices
	f.products.images = f.images
	f.tx = &fakeTxManager{stores: []stateful{f.products, f.prices, f.images}}
	f.enqueuer = &fakeEnqueuer{}
	f.service = NewProductService(f.products, f.prices, f.images, f.tx, fakeCache{}, f.enqueuer)
	return f
}

func (f *fixture) seedProduct(t *testing.T, name string, market, sale int64) *model.Product {
	t.Helper()
	p, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        name,
		MarketPrice: market,
		SalePrice:   sale,
	}, nil)
	require.NoError(t, err)
	return p
}

func int64Ptr(v int64) *int64 { return &v }

// ---- tests ----

func TestCreateProduct(t *testing.T) {
	f := newFixture()

	p, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "Trà Sữa",
		MarketPrice: 1000,
		SalePrice:   800,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Trà Sữa", p.Name)
	assert.Equal(t, "tra sua", p.NormalizeName)
	assert.Equal(t, "tra-sua", p.Slug)
	assert.Equal(t, model.StatusActive, p.Status)
	require.NotNil(t, p.LatestPrice)
	assert.Equal(t, int64(1000), p.LatestPrice.MarketPrice)
	assert.Equal(t, int64(800), p.LatestPrice.SalePrice)

	entries, err := f.prices.FindAllByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "Too Cheap",
		MarketPrice: 100,
		SalePrice:   800,
	}, nil)

	assert.Error(t, err)
	assert.Empty(t, f.products.products)
}

func TestCreateProductNameConflict(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "Trà Sữa", 1000, 800)

	_, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "Trà Sữa",
		MarketPrice: 2000,
		SalePrice:   1500,
	}, nil)
	assert.ErrorIs(t, err, model.ErrProductNameTaken)

	// A different name colliding on the derived slug is a conflict too.
	_, err = f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "trà sữa",
		MarketPrice: 2000,
		SalePrice:   1500,
	}, nil)
	assert.ErrorIs(t, err, model.ErrProductNameTaken)

	assert.Len(t, f.products.products, 1)
	assert.Len(t, f.prices.entries, 1)
}

func TestCreateProductRollbackCleansUpUpload(t *testing.T) {
	f := newFixture()
	f.tx.failCommit = true

	file := &multipart.FileHeader{Filename: "photo.jpg"}
	_, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "Trà Sữa",
		MarketPrice: 1000,
		SalePrice:   800,
	}, file)

	assert.ErrorIs(t, err, database.ErrCommitFailed)

	// All-or-nothing: no product, no ledger entry, no image row.
	assert.Empty(t, f.products.products)
	assert.Empty(t, f.prices.entries)
	assert.Empty(t, f.images.attached)

	// The already-uploaded asset goes to the cleanup queue.
	require.Len(t, f.enqueuer.tasks, 1)
	assert.Equal(t, "asset:cleanup", f.enqueuer.tasks[0].taskType)
}

func TestCreateProductUploadFailure(t *testing.T) {
	f := newFixture()
	f.images.failUpload = true

	file := &multipart.FileHeader{Filename: "photo.jpg"}
	_, err := f.service.Create(context.Background(), &model.CreateProductRequest{
		Name:        "Trà Sữa",
		MarketPrice: 1000,
		SalePrice:   800,
	}, file)

	assert.ErrorIs(t, err, model.ErrUploadFailed)
	assert.Empty(t, f.products.products)
	assert.Empty(t, f.enqueuer.tasks)
}

func TestGetResolvesKey(t *testing.T) {
	f := newFixture()
	created := f.seedProduct(t, "Trà Sữa", 1000, 800)

	byID, err := f.service.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	bySlug, err := f.service.Get(context.Background(), "tra-sua")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	byName, err := f.service.Get(context.Background(), "Trà Sữa")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = f.service.Get(context.Background(), "no-such-product")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestUpdateCarriesForwardMissingPriceLeg(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	updated, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{
		SalePrice: int64Ptr(700),
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, updated.LatestPrice)
	assert.Equal(t, int64(1000), updated.LatestPrice.MarketPrice, "market leg carries forward")
	assert.Equal(t, int64(700), updated.LatestPrice.SalePrice)

	entries, err := f.prices.FindAllByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "ledger is append-only")
}

func TestUpdateWithoutPriceLegsAddsNoEntry(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	name := "Trà Sữa Đặc Biệt"
	updated, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{
		Name: &name,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "tra-sua-dac-biet", updated.Slug)
	assert.Len(t, f.prices.entries, 1)
}

func TestUpdateNameConflict(t *testing.T) {
	f := newFixture()
	f.seedProduct(t, "Trà Sữa", 1000, 800)
	p := f.seedProduct(t, "Cà Phê", 1000, 800)

	name := "Trà Sữa"
	_, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{
		Name: &name,
	}, nil)
	assert.ErrorIs(t, err, model.ErrProductNameTaken)
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	first := &multipart.FileHeader{Filename: "first.jpg"}
	_, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{}, first)
	require.NoError(t, err)

	firstPublicID := f.images.attached[p.ID].PublicID

	second := &multipart.FileHeader{Filename: "second.jpg"}
	updated, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{}, second)
	require.NoError(t, err)

	assert.Contains(t, f.images.removals, firstPublicID, "prior asset deleted by public id")
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, firstPublicID, updated.Image.PublicID)
	assert.Equal(t, "second.jpg", updated.Image.DisplayName)
}

func TestHideAndShow(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	hidden, err := f.service.Hide(context.Background(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, hidden.Status)
	assert.NotNil(t, hidden.HiddenAt)

	shown, err := f.service.Show(context.Background(), "tra-sua")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, shown.Status)
	assert.Nil(t, shown.HiddenAt)
}

func TestRemoveDeletesAssetBeforeRow(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	file := &multipart.FileHeader{Filename: "photo.jpg"}
	_, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{}, file)
	require.NoError(t, err)
	publicID := f.images.attached[p.ID].PublicID

	removed, err := f.service.Remove(context.Background(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ID, removed.ID)

	assert.Contains(t, f.images.removals, publicID)
	_, err = f.products.FindByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestRemoveMissingProduct(t *testing.T) {
	f := newFixture()

	_, err := f.service.Remove(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestGetAllPricesOrderedOldestFirst(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	for _, sale := range []int64{700, 600} {
		time.Sleep(time.Millisecond)
		_, err := f.service.Update(context.Background(), p.ID.String(), &model.UpdateProductRequest{
			SalePrice: int64Ptr(sale),
		}, nil)
		require.NoError(t, err)
	}

	entries, err := f.service.GetAllPrices(context.Background(), "tra-sua")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(800), entries[0].SalePrice)
	assert.Equal(t, int64(600), entries[2].SalePrice)
}

func TestIsExistName(t *testing.T) {
	f := newFixture()
	p := f.seedProduct(t, "Trà Sữa", 1000, 800)

	exists, err := f.service.IsExistName(context.Background(), "Trà Sữa", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	// Excluding the record itself frees its own name for updates.
	exists, err = f.service.IsExistName(context.Background(), "Trà Sữa", &p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.service.IsExistName(context.Background(), "Cà Phê", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture()
	for i := 0; i < 7; i++ {
		time.Sleep(time.Millisecond)
		f.seedProduct(t, fmt.Sprintf("Trà Sữa %d", i), 1000, 800)
	}
	other := f.seedProduct(t, "Cà Phê", 1000, 800)
	_, err := f.service.Hide(context.Background(), other.ID.String())
	require.NoError(t, err)

	products, meta, err := f.service.List(context.Background(), &model.ListProductsRequest{
		Search: "tra sua",
		Page:   1,
		Limit:  5,
	}, "/api/v1/products?search=tra+sua&page=1&limit=5")
	require.NoError(t, err)

	assert.Len(t, products, 5)
	assert.Equal(t, int64(7), meta.TotalItems)
	assert.Equal(t, 2, meta.TotalPages)
	assert.True(t, meta.IsNext)
	assert.Contains(t, meta.NextURL, "page=2")

	hidden := true
	products, meta, err = f.service.List(context.Background(), &model.ListProductsRequest{
		IsHidden: &hidden,
		Page:     1,
		Limit:    10,
	}, "/api/v1/products?is_hidden=true")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, other.ID, products[0].ID)
}

func TestListRejectsUnknownLimit(t *testing.T) {
	f := newFixture()

	_, _, err := f.service.List(context.Background(), &model.ListProductsRequest{
		Page:  1,
		Limit: 7,
	}, "/api/v1/products?limit=7")
	assert.Error(t, err)
}
