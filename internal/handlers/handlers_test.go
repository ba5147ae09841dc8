package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
	"catalog-service/internal/storage"
)

// ============================================================================
// Mocks
// ============================================================================

type MockFileStorage struct {
	mock.Mock
}

var _ storage.FileStorage = (*MockFileStorage)(nil)

func (m *MockFileStorage) SaveFile(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStorage) ValidateFile(name string, size int64, contentType string) error {
	args := m.Called(name, size, contentType)
	return args.Error(0)
}

// ============================================================================
// Fixtures
// ============================================================================

type envelope struct {
	ResultStatus models.ResultStatus `json:"resultStatus"`
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	ErrorType    string              `json:"errorType"`
	Data         json.RawMessage     `json:"data"`
	Pagination   *pagination.Info    `json:"pagination"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	files  *MockFileStorage
	store  *repository.Store
	user   uuid.UUID
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return repository.NewStore(db)
}

func buildServices(store *repository.Store, files storage.FileStorage, log *logrus.Logger) Services {
	return Services{
		Products:   services.NewCatalogService(models.KindProduct, store, nil, nil, log),
		Services:   services.NewCatalogService(models.KindService, store, nil, nil, log),
		Categories: services.NewCategoryService(store, log),
		Brands:     services.NewBrandService(store, log),
		Favorites:  services.NewFavoriteService(store, log),
		Media:      services.NewMediaService(store, files, log),
		MediaTypes: services.NewMediaTypeService(store),
		Features:   services.NewFeatureService(store),
	}
}

func newTestAPI(t *testing.T, auth gin.HandlerFunc) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newTestStore(t)
	files := new(MockFileStorage)
	router := NewRouter(RouterConfig{
		Logger: log,
		Auth:   auth,
		Pager:  Pager{DefaultSize: 20, MaxSize: 50},
		DB:     store,
	}, buildServices(store, files, log))

	return &testAPI{t: t, router: router, files: files, store: store, user: uuid.New()}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", a.user.String())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testAPI) createCategory(name string) models.Category {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": name})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	decode(a.t, w, &category)
	return category
}

func (a *testAPI) createProduct(name string, price float64, sku string, categoryID uuid.UUID) models.CatalogItemResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name":        name,
		"description": name + " description",
		"price":       price,
		"categoryId":  categoryID,
		"sku":         sku,
		"stock":       5,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var item models.CatalogItemResponse
	decode(a.t, w, &item)
	return item
}

// ============================================================================
// Health
// ============================================================================

func TestHealthAndReadiness(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())

	w := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "connected")
}

// ============================================================================
// Catalog items
// ============================================================================

func TestCreateAndGetProduct(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")

	item := api.createProduct("Red Shoes", 50, "A", category.ID)
	assert.Equal(t, models.KindProduct, item.Kind)
	assert.Equal(t, api.user, item.OwnerID)
	assert.True(t, item.IsAvailable)
	require.NotNil(t, item.SKU)
	assert.Equal(t, "A", *item.SKU)

	w := api.do(http.MethodGet, "/api/products/"+item.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.CatalogItemResponse
	env := decode(t, w, &fetched)
	assert.Equal(t, models.ResultOk, env.ResultStatus)
	assert.Equal(t, "Red Shoes", fetched.Name)

	w = api.do(http.MethodGet, "/api/services/"+item.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "a product is not a service")
	env = decode(t, w, nil)
	assert.Equal(t, models.ResultNotFound, env.ResultStatus)
	assert.False(t, env.Success)
}

func TestCreateProductValidation(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing price", map[string]interface{}{"name": "X", "description": "d", "categoryId": category.ID, "sku": "A"}},
		{"negative price", map[string]interface{}{"name": "X", "description": "d", "price": -1, "categoryId": category.ID, "sku": "A"}},
		{"missing sku", map[string]interface{}{"name": "X", "description": "d", "price": 1, "categoryId": category.ID}},
		{"discount above price", map[string]interface{}{"name": "X", "description": "d", "price": 10, "discountPrice": 12, "categoryId": category.ID, "sku": "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := decode(t, w, nil)
			assert.Equal(t, models.ResultInvalid, env.ResultStatus)
		})
	}
}

func TestDuplicateSKUIsConflict(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	api.createProduct("Red Shoes", 50, "A", category.ID)

	w := api.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Blue Shoes", "description": "d", "price": 40, "categoryId": category.ID, "sku": "A",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPagination(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	for i := 0; i < 3; i++ {
		api.createProduct(fmt.Sprintf("Shoe %d", i), 10, fmt.Sprintf("S-%d", i), category.ID)
	}

	w := api.do(http.MethodGet, "/api/products?pageNumber=2&pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.CatalogItemResponse
	env := decode(t, w, &items)
	assert.Len(t, items, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasPreviousPage)
	assert.False(t, env.Pagination.HasNextPage)

	w = api.do(http.MethodGet, "/api/products?pageNumber=abc&pageSize=-4", nil)
	require.Equal(t, http.StatusOK, w.Code, "bad paging input falls back to defaults")
	env = decode(t, w, &items)
	assert.Len(t, items, 3)
	assert.Equal(t, 20, env.Pagination.PageSize)

	w = api.do(http.MethodGet, "/api/products?pageSize=1000", nil)
	env = decode(t, w, nil)
	assert.Equal(t, 50, env.Pagination.PageSize, "page size is capped")
}

func TestUpdateSetPriceAndDelete(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	item := api.createProduct("Red Shoes", 50, "A", category.ID)
	path := "/api/products/" + item.ID.String()

	w := api.do(http.MethodPut, path, map[string]interface{}{"name": "Crimson Shoes", "stock": 2.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.CatalogItemResponse
	decode(t, w, &updated)
	assert.Equal(t, "Crimson Shoes", updated.Name)
	assert.Equal(t, 2.5, *updated.Stock)

	w = api.do(http.MethodPut, path+"/price", map[string]interface{}{"price": 70})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.Equal(t, 70.0, updated.Price)

	w = api.do(http.MethodPut, path+"/price", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code, "deleting twice is a no-op")
	w = api.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAggregateRoutes(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Repairs")

	w := api.do(http.MethodPost, "/api/services/aggregate", map[string]interface{}{
		"name":        "Screen Repair",
		"description": "Phone screens",
		"price":       80,
		"categoryId":  category.ID,
		"serviceType": "Repair",
		"duration":    45,
		"features":    []map[string]string{{"name": "Warranty", "value": "90 days"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.CatalogItemResponse
	decode(t, w, &created)
	require.Len(t, created.Features, 1)
	assert.Equal(t, 45, *created.Duration)

	w = api.do(http.MethodPut, "/api/services/aggregate/"+created.ID.String(), map[string]interface{}{
		"features": []map[string]string{{"name": "warranty", "value": "1 year"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/services/"+created.ID.String()+"?details=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details models.CatalogItemResponse
	decode(t, w, &details)
	require.Len(t, details.Features, 1)
	assert.Equal(t, "1 year", details.Features[0].Value)

	w = api.do(http.MethodGet, "/api/services/"+created.ID.String()+"/features", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/api/services/aggregate/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/api/services/"+created.ID.String()+"/details", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryRoutes(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	cheap := api.createProduct("Red Shoes", 20, "A", category.ID)
	api.createProduct("Blue Hat", 80, "B", category.ID)

	var items []models.CatalogItemResponse

	w := api.do(http.MethodGet, "/api/products/price-range?min=10&max=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)

	w = api.do(http.MethodGet, "/api/products/price-range?min=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/products/category/"+category.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.Len(t, items, 2)

	w = api.do(http.MethodGet, "/api/products/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.Len(t, items, 2)

	w = api.do(http.MethodGet, "/api/products/user/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.Empty(t, items)

	w = api.do(http.MethodPost, "/api/products/by-ids", map[string]interface{}{"ids": []uuid.UUID{cheap.ID, uuid.New()}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.Len(t, items, 1)

	w = api.do(http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRoute(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	api.createProduct("Red Shoes", 20, "A", category.ID)
	api.createProduct("Garden Hose", 15, "B", category.ID)

	w := api.do(http.MethodGet, "/api/products/search?name=red%20shoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []models.CatalogItemResponse
	decode(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Red Shoes", results[0].Name)
	require.NotNil(t, results[0].Score)
	assert.Equal(t, 100, *results[0].Score)

	w = api.do(http.MethodGet, "/api/products/search?name=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/products/search/popular", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBrandLinkRoutes(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	item := api.createProduct("Red Shoes", 20, "A", category.ID)

	w := api.do(http.MethodPost, "/api/brands", map[string]interface{}{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand models.Brand
	decode(t, w, &brand)

	path := "/api/products/" + item.ID.String() + "/brands/" + brand.ID.String()
	var result struct {
		Success bool `json:"success"`
	}

	for i := 0; i < 2; i++ {
		w = api.do(http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, w.Code, "linking twice still succeeds")
		decode(t, w, &result)
		assert.True(t, result.Success)
	}

	var items []models.CatalogItemResponse
	w = api.do(http.MethodGet, "/api/products/brand/"+brand.ID.String(), nil)
	decode(t, w, &items)
	assert.Len(t, items, 1)

	for i := 0; i < 2; i++ {
		w = api.do(http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, w.Code, "unlinking twice still succeeds")
		decode(t, w, &result)
		assert.True(t, result.Success)
	}

	w = api.do(http.MethodGet, "/api/products/brand/"+brand.ID.String(), nil)
	decode(t, w, &items)
	assert.Empty(t, items)

	w = api.do(http.MethodPost, "/api/products/"+item.ID.String()+"/brands/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============================================================================
// Categories and favorites
// ============================================================================

func TestCategoryRoutes(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	root := api.createCategory("Clothing")

	w := api.do(http.MethodPost, "/api/categories", map[string]interface{}{"name": "Shoes", "parentId": root.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var child models.Category
	decode(t, w, &child)

	w = api.do(http.MethodGet, "/api/categories/"+root.ID.String()+"/subcategories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var children []models.Category
	decode(t, w, &children)
	require.Len(t, children, 1)

	w = api.do(http.MethodPut, "/api/categories/"+root.ID.String(), map[string]interface{}{"parentId": child.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "a category cannot move under its own child")

	api.createProduct("Red Shoes", 20, "A", child.ID)
	w = api.do(http.MethodDelete, "/api/categories/"+child.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, models.ResultConflict, env.ResultStatus)
}

func TestFavoriteRoutes(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	item := api.createProduct("Red Shoes", 20, "A", category.ID)

	w := api.do(http.MethodPost, "/api/favorites", map[string]interface{}{"baseItemId": item.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var favorite models.Favorite
	decode(t, w, &favorite)

	w = api.do(http.MethodPost, "/api/favorites", map[string]interface{}{"baseItemId": item.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	var favorites []models.Favorite
	w = api.do(http.MethodGet, "/api/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &favorites)
	assert.Len(t, favorites, 1)

	owner := api.user
	api.user = uuid.New()
	w = api.do(http.MethodDelete, "/api/favorites/"+favorite.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "other users cannot remove the favorite")

	api.user = owner
	w = api.do(http.MethodDelete, "/api/favorites/"+favorite.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ============================================================================
// Media and spreadsheets
// ============================================================================

func TestMediaUploadRoute(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	item := api.createProduct("Red Shoes", 20, "A", category.ID)

	w := api.do(http.MethodPost, "/api/mediatypes", map[string]interface{}{"name": "image"})
	require.Equal(t, http.StatusCreated, w.Code)
	var mediaType models.MediaType
	decode(t, w, &mediaType)

	api.files.On("ValidateFile", "front.png", int64(3), "image/png").Return(nil)
	api.files.On("SaveFile", mock.Anything, "front.png", mock.Anything).Return("http://files/abc.png", nil)

	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("itemId", item.ID.String()))
	require.NoError(t, form.WriteField("mediaTypeId", mediaType.ID.String()))
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="front.png"`}
	header["Content-Type"] = []string{"image/png"}
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var media models.Media
	decode(t, w, &media)
	assert.Equal(t, "http://files/abc.png", media.URL)

	w = api.do(http.MethodGet, "/api/media/item/"+item.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Media
	decode(t, w, &listed)
	assert.Len(t, listed, 1)
	api.files.AssertExpectations(t)
}

func TestMediaFilesArePublic(t *testing.T) {
	api := newTestAPI(t, middleware.AuthMiddleware("secret"))
	api.files.On("GetFile", mock.Anything, "abc.png").Return(io.NopCloser(strings.NewReader("png")), nil)

	w := api.do(http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/media/files/abc.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png", w.Body.String())
}

func TestExportRoute(t *testing.T) {
	api := newTestAPI(t, middleware.DevelopmentAuthMiddleware())
	category := api.createCategory("Shoes")
	api.createProduct("Red Shoes", 20, "A", category.ID)

	w := api.do(http.MethodGet, "/api/products/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products_export.xlsx")
	assert.NotZero(t, w.Body.Len())

	w = api.do(http.MethodGet, "/api/products/import/template", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var template models.ImportTemplate
	decode(t, w, &template)
	assert.Equal(t, "products", template.Entity)

	w = api.do(http.MethodPost, "/api/products/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
