package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mazzeh-api/handlers"
	"mazzeh-api/media"
	"mazzeh-api/middleware"
	"mazzeh-api/models"
	"mazzeh-api/routes"
	"mazzeh-api/scoring"
	"mazzeh-api/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	store  *media.Store
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWithCache(t, nil)
}

// newEnvWithCache builds the environment with scores read through cache.
func newEnvWithCache(t *testing.T, cache scoring.Cache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger()
	tokens := middleware.NewTokenIssuer("test-secret", time.Minute, time.Hour)
	store := media.NewStore(t.TempDir(), "/media")

	h := handlers.New(db, tokens, scoring.NewScorer(db, cache, log), store, log)
	router := routes.NewRouter(h, routes.Options{Tokens: tokens, Media: store, Log: log})
	return &testEnv{t: t, db: db, router: router, store: store}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path, token, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", filename)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// dec reads a JSON money value, which is encoded as a string.
func dec(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(v))
	require.NoError(t, err)
	return d
}

func (e *testEnv) signupCustomer(phone string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/signup/customer", "", gin.H{
		"phone_number": phone, "first_name": "A", "last_name": "B", "password": "pw",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
}

// signupRestaurant creates a manager and returns the restaurant id.
func (e *testEnv) signupRestaurant(phone, name string) uint {
	e.t.Helper()
	w := e.do(http.MethodPost, "/signup/restaurant", "", gin.H{
		"phone_number": phone, "password": "pw", "name": name,
		"business_type": "restaurant", "city_name": "Damascus",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var r models.RestaurantProfile
	require.NoError(e.t, e.db.Joins("JOIN users ON users.id = restaurant_profiles.manager_id").
		Where("users.phone_number = ?", phone).First(&r).Error)
	return r.ID
}

func (e *testEnv) login(phone, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/token", "", gin.H{"phone_number": phone, "password": password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode(e.t, w)["access"].(string)
}

func (e *testEnv) approveRestaurant(id uint) {
	e.t.Helper()
	require.NoError(e.t, e.db.Model(&models.RestaurantProfile{}).Where("id = ?", id).
		Update("state", models.StateApproved).Error)
}

func (e *testEnv) addItem(restaurantID uint, name, price string, discount uint) models.Item {
	e.t.Helper()
	item := models.Item{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Discount:     discount,
		State:        models.ItemAvailable,
	}
	require.NoError(e.t, e.db.Create(&item).Error)
	return item
}

func (e *testEnv) createAdmin(phone string) string {
	e.t.Helper()
	e.signupCustomer(phone)
	require.NoError(e.t, e.db.Model(&models.User{}).Where("phone_number = ?", phone).
		Updates(map[string]interface{}{"role": models.RoleAdmin, "is_staff": true}).Error)
	return e.login(phone, "pw")
}

// shop is a marketplace with one approved restaurant, two items and a logged-in customer.
type shop struct {
	*testEnv
	restaurantID uint
	manager      string
	customer     string
	burger       models.Item
	fries        models.Item
}

func newShop(t *testing.T) *shop {
	return newShopWithCache(t, nil)
}

func newShopWithCache(t *testing.T, cache scoring.Cache) *shop {
	e := newEnvWithCache(t, cache)
	rid := e.signupRestaurant("0911000001", "Grill House")
	e.approveRestaurant(rid)
	require.NoError(t, e.db.Model(&models.RestaurantProfile{}).Where("id = ?", rid).
		Update("delivery_price", decimal.RequireFromString("5.00")).Error)
	e.signupCustomer("0944000001")

	return &shop{
		testEnv:      e,
		restaurantID: rid,
		manager:      e.login("0911000001", "pw"),
		customer:     e.login("0944000001", "pw"),
		burger:       e.addItem(rid, "Burger", "10.00", 0),
		fries:        e.addItem(rid, "Fries", "4.50", 10),
	}
}

// memCache is a process-local score cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]float64
}

func newMemCache() *memCache { return &memCache{data: map[string]float64{}} }

func (c *memCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = score
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (s *shop) addToCart(token string, itemID uint, count int) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/customer/cart-items", token, gin.H{"item_id": itemID, "count": count})
}

// placeOrder fills the customer's cart and places an order, returning its id.
func (s *shop) placeOrder(method models.DeliveryMethod) uint {
	s.t.Helper()
	require.Equal(s.t, http.StatusCreated, s.addToCart(s.customer, s.burger.ID, 1).Code)
	w := s.do(http.MethodPost, "/customer/orders", s.customer, gin.H{
		"restaurant_id": s.restaurantID, "delivery_method": method,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(s.t, w)["order"].(map[string]interface{})
	return uint(order["id"].(float64))
}
