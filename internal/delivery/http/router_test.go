package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-system/config"
	deliveryhttp "catalog-system/internal/delivery/http"
	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/delivery/http/handler"
	"catalog-system/internal/delivery/http/middleware"
	"catalog-system/internal/domain/entity"
	"catalog-system/internal/domain/repository"
	"catalog-system/internal/infrastructure/database"
	"catalog-system/internal/infrastructure/mail"
	repoImpl "catalog-system/internal/repository"
	"catalog-system/internal/service"
	"catalog-system/internal/usecase"
	"catalog-system/pkg/jwt"
	"catalog-system/pkg/password"
	"catalog-system/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Close() error {
	return nil
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type memoryTokenRepository struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (r *memoryTokenRepository) Store(ctx context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = struct{}{}
	return nil
}

func (r *memoryTokenRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[key]
	return ok, nil
}

func (r *memoryTokenRepository) Delete(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.keys, key)
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	handler     http.Handler
	products    repository.ProductRepository
	users       repository.UserRepository
	mailer      *recordingMailer
	hasher      password.Hasher
	adminToken  string
	memberToken string
	superuser   *entity.User
}

func newTestServer(t *testing.T, failSilently bool) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	productRepo := repoImpl.NewProductRepository(db)
	userRepo := repoImpl.NewUserRepository(db)
	tokenRepo := &memoryTokenRepository{keys: make(map[string]struct{})}
	mailer := &recordingMailer{}
	hasher := &password.BcryptHasher{Cost: bcrypt.MinCost}
	customValidator := validator.NewValidator()
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "router-test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})

	notification := service.NewNotificationService(log, userRepo, mailer, "noreply@test.com", failSilently)
	productUsecase := usecase.NewProductUsecase(log, productRepo, notification, customValidator)
	userUsecase := usecase.NewUserUsecase(log, userRepo, hasher, customValidator)
	authUsecase := usecase.NewAuthUsecase(log, userRepo, tokenRepo, jwtService, hasher, customValidator)

	router := deliveryhttp.NewRouter(
		handler.NewAuthHandler(authUsecase),
		handler.NewProductHandler(log, productUsecase),
		handler.NewUserHandler(log, userUsecase),
		middleware.NewAuthMiddleware(authUsecase),
		middleware.NewCORSMiddleware("*"),
		middleware.NewLoggingMiddleware(log),
		middleware.NewMetricsMiddleware(prometheus.NewRegistry()),
	)

	s := &testServer{
		handler:  router.Setup(),
		products: productRepo,
		users:    userRepo,
		mailer:   mailer,
		hasher:   hasher,
	}

	s.seedUser(t, "admin", "admin@test.com", true, false)
	s.seedUser(t, "member", "member@test.com", false, false)
	s.superuser = s.seedUser(t, "root", "root@test.com", true, true)

	s.adminToken = s.login(t, "admin")
	s.memberToken = s.login(t, "member")
	return s
}

func (s *testServer) seedUser(t *testing.T, username, email string, staff, superuser bool) *entity.User {
	t.Helper()

	hashed, err := s.hasher.Hash("secret")
	require.NoError(t, err)
	user := &entity.User{
		Username:    username,
		Email:       email,
		Password:    hashed,
		IsActive:    true,
		IsStaff:     staff,
		IsSuperuser: superuser,
	}
	require.NoError(t, s.users.Save(context.Background(), user))
	return user
}

func (s *testServer) seedProduct(t *testing.T, views int) *entity.Product {
	t.Helper()

	product := &entity.Product{
		Name:  "Laptop",
		Price: decimal.RequireFromString("999.99"),
		Brand: "Acme",
		Views: views,
	}
	require.NoError(t, s.products.Save(context.Background(), product))
	return product
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens dto.TokenResponse
	decodeData(t, rec, &tokens)
	return tokens.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = strings.NewReader(raw)
		} else {
			payload, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, out))
}

func TestAnonymousProductGetIncrementsViews(t *testing.T) {
	s := newTestServer(t, true)
	product := s.seedProduct(t, 10)

	rec := s.do(t, http.MethodGet, "/products/"+product.SKU.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got dto.ProductResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 11, got.Views)
	assert.Equal(t, "999.99", got.Price)
	assert.Equal(t, product.SKU, got.SKU)
}

func TestAnonymousProductList(t *testing.T) {
	s := newTestServer(t, true)
	s.seedProduct(t, 0)
	s.seedProduct(t, 0)

	rec := s.do(t, http.MethodGet, "/products/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []dto.ProductResponse
	decodeData(t, rec, &got)
	assert.Len(t, got, 2)
}

func TestProductGetUnknownOrMalformedSKU(t *testing.T) {
	s := newTestServer(t, true)

	for _, path := range []string{"/products/not-a-uuid", "/products/6f1c8a9e-5b0e-4c61-9a57-2f1b1b6a9a10"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestAdminCreatesProductAndEveryoneIsNotified(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/products/create", s.adminToken, map[string]string{
		"name":  "Laptop",
		"price": "999.99",
		"brand": "Acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Warning"))

	var got dto.ProductResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 0, got.Views)

	sent := s.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Product catalog has been recently changed by: admin@test.com", sent[0].Subject)
	assert.ElementsMatch(t, []string{"admin@test.com", "member@test.com", "root@test.com"}, sent[0].To)
	assert.Contains(t, sent[0].Body, "CREATE")
	assert.Contains(t, sent[0].Body, got.SKU.String())
}

func TestProductCreateValidationError(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/products/create", s.adminToken, map[string]interface{}{
		"name":  "Laptop",
		"price": 0,
		"brand": "Acme",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Error, &fields))
	assert.Contains(t, fields, "price")
	assert.Empty(t, s.mailer.messages())

	rec = s.do(t, http.MethodPost, "/products/create", s.adminToken, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductNotificationFailureStillSucceeds(t *testing.T) {
	s := newTestServer(t, false)
	s.mailer.err = errors.New("smtp unavailable")

	rec := s.do(t, http.MethodPost, "/products/create", s.adminToken, map[string]string{
		"name":  "Laptop",
		"price": "10.00",
		"brand": "Acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Warning"), "199")

	products, err := s.products.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestAdminUpdatesAndDeletesProduct(t *testing.T) {
	s := newTestServer(t, true)
	product := s.seedProduct(t, 4)

	rec := s.do(t, http.MethodPut, "/products/update/"+product.SKU.String(), s.adminToken, map[string]string{
		"name":  "Notebook",
		"price": "12.50",
		"brand": "Other",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got dto.ProductResponse
	decodeData(t, rec, &got)
	assert.Equal(t, "Notebook", got.Name)
	assert.Equal(t, 4, got.Views)

	rec = s.do(t, http.MethodDelete, "/products/delete/"+product.SKU.String(), s.adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/products/"+product.SKU.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	sent := s.mailer.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Body, "UPDATE")
	assert.Contains(t, sent[1].Body, "DELETE")
	assert.Contains(t, sent[1].Body, "Notebook")
}

func TestAdminCannotUpdateOrDeleteSuperuser(t *testing.T) {
	s := newTestServer(t, true)
	path := "/users/update/" + itoa(s.superuser.ID)

	rec := s.do(t, http.MethodPut, path, s.adminToken, map[string]string{
		"username": "hijacked",
		"password": "new",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Can't update superusers, only admins.", decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodDelete, "/users/delete/"+itoa(s.superuser.ID), s.adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Can't delete superusers, only admins.", decodeEnvelope(t, rec).Message)

	stored, err := s.users.FindByKey(context.Background(), s.superuser.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "root", stored.Username)
	assert.Equal(t, s.superuser.Password, stored.Password)
}

func TestAdminUserLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/users/create", s.adminToken, map[string]string{
		"username": "newstaff",
		"email":    "newstaff@test.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	var created dto.UserResponse
	decodeData(t, rec, &created)
	assert.True(t, created.IsStaff)
	assert.False(t, created.IsSuperuser)

	rec = s.do(t, http.MethodPost, "/users/create", s.adminToken, map[string]string{
		"username": "newstaff",
		"password": "secret",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with username newstaff already exists", decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodGet, "/users/", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []dto.UserResponse
	decodeData(t, rec, &users)
	assert.Len(t, users, 4)

	rec = s.do(t, http.MethodGet, "/users/"+itoa(created.ID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/delete/"+itoa(created.ID), s.adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+itoa(created.ID), s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/abc", s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNonAdminIsForbidden(t *testing.T) {
	s := newTestServer(t, true)
	product := s.seedProduct(t, 0)
	productBody := map[string]string{"name": "x", "price": "1.00", "brand": "y"}
	userBody := map[string]string{"username": "x", "password": "y"}

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/products/create", productBody},
		{http.MethodPut, "/products/update/" + product.SKU.String(), productBody},
		{http.MethodDelete, "/products/delete/" + product.SKU.String(), nil},
		{http.MethodGet, "/users/", nil},
		{http.MethodPost, "/users/create", userBody},
		{http.MethodGet, "/users/" + itoa(s.superuser.ID), nil},
		{http.MethodPut, "/users/update/" + itoa(s.superuser.ID), userBody},
		{http.MethodDelete, "/users/delete/" + itoa(s.superuser.ID), nil},
	}

	for _, token := range []string{"", s.memberToken} {
		for _, r := range requests {
			rec := s.do(t, r.method, r.path, token, r.body)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", r.method, r.path)
		}
	}

	stored, err := s.products.FindByKey(context.Background(), product.SKU)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Laptop", stored.Name)
	assert.Empty(t, s.mailer.messages())
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, "/products/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/products/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/auth/logout", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/", s.adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/products/", "", nil)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/products/"`)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestSuperuserUpdateRejectedEvenWithMalformedBody(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPut, "/users/update/"+itoa(s.superuser.ID), s.adminToken, "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Can't update superusers, only admins.", decodeEnvelope(t, rec).Message)
}

func TestUpdateMissingTargetWithMalformedBodyIsNotFound(t *testing.T) {
	s := newTestServer(t, true)

	for _, path := range []string{
		"/products/update/6f1c8a9e-5b0e-4c61-9a57-2f1b1b6a9a10",
		"/users/update/9999",
	} {
		rec := s.do(t, http.MethodPut, path, s.adminToken, "{not json")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestUpdateExistingTargetWithMalformedBody(t *testing.T) {
	s := newTestServer(t, true)
	product := s.seedProduct(t, 0)
	staff := s.seedUser(t, "staff", "staff@test.com", true, false)

	for _, path := range []string{
		"/products/update/" + product.SKU.String(),
		"/users/update/" + itoa(staff.ID),
	} {
		rec := s.do(t, http.MethodPut, path, s.adminToken, "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "Invalid request body", decodeEnvelope(t, rec).Message)
	}
	assert.Empty(t, s.mailer.messages())
}

func TestProductGetAfterDeleteStaysDeleted(t *testing.T) {
	s := newTestServer(t, true)
	product := s.seedProduct(t, 0)
	stale := *product

	rec := s.do(t, http.MethodDelete, "/products/delete/"+product.SKU.String(), s.adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stale.Views++
	assert.Error(t, s.products.Save(context.Background(), &stale))

	rec = s.do(t, http.MethodGet, "/products/"+product.SKU.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
