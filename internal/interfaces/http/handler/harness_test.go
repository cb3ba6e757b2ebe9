package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/comufarm/backend/internal/application/catalog"
	feedbackapp "github.com/comufarm/backend/internal/application/feedback"
	"github.com/comufarm/backend/internal/application/ordering"
	"github.com/comufarm/backend/internal/application/retry"
	"github.com/comufarm/backend/internal/infrastructure/cache"
	"github.com/comufarm/backend/internal/infrastructure/event"
	"github.com/comufarm/backend/internal/infrastructure/persistence"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/comufarm/backend/internal/infrastructure/storage"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testApp is the marketplace API over an in-memory SQLite database
type testApp struct {
	engine  *gin.Engine
	db      *gorm.DB
	bus     *event.InMemoryEventBus
	feed    *event.ChangeFeed
	storage *storage.StubObjectStorage
	changes *ChangeFeedHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	products := persistence.NewGormProductRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	supplies := persistence.NewGormSupplyRepository(db)
	feedbacks := persistence.NewGormFeedbackRepository(db)

	bus := event.NewInMemoryEventBus(nil)
	feed := event.NewChangeFeed(bus)
	objects := storage.NewStubObjectStorage("http://files.test")
	claims := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { claims.Close() })

	noRetry := retry.Policy{}

	catalog := catalogapp.NewService(products, orders, supplies, nil)
	catalog.SetEventPublisher(bus)
	catalog.SetObjectStorage(objects)
	catalog.SetRetryPolicy(noRetry)

	fb := feedbackapp.NewService(feedbacks, orders, products, nil)
	fb.SetEventPublisher(bus)
	fb.SetRetryPolicy(noRetry)

	cfg := ordering.DefaultPlacementConfig()
	cfg.RetryDelay = 0
	placement := ordering.NewPlacementService(
		persistence.NewGormTransactionScope(db), orders,
		ordering.WithClaimStore(claims),
		ordering.WithEventPublisher(bus),
		ordering.WithConfig(cfg),
	)

	changes := NewChangeFeedHandler(feed, fb, WithStreamHeartbeat(time.Hour))

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", middleware.PartyAuth(middleware.PartyAuthConfig{}))

	productH := NewProductHandler(catalog)
	api.GET("/products", productH.List)
	api.GET("/products/available", productH.ListAvailable)
	api.GET("/products/:id", productH.GetByID)
	api.GET("/products/:id/check", productH.CheckOrder)
	api.POST("/products", productH.Create)

	orderH := NewOrderHandler(placement, catalog)
	api.GET("/orders", orderH.List)
	api.POST("/orders", orderH.Place)

	feedbackH := NewFeedbackHandler(fb)
	api.GET("/orders/:id/feedbacks", feedbackH.Thread)
	api.POST("/orders/:id/feedbacks", feedbackH.Append)

	supplyH := NewSupplyHandler(catalog)
	api.GET("/supplies", supplyH.List)
	api.POST("/supplies/export", supplyH.Export)

	api.GET("/changes/stream", changes.Stream)
	api.GET("/changes/ws", changes.WebSocket)

	return &testApp{engine: engine, db: db, bus: bus, feed: feed, storage: objects, changes: changes}
}

type caller struct {
	id   string
	role string
}

var (
	farmer  = caller{id: "farmer_test", role: "farmer"}
	company = caller{id: "company_test", role: "company"}
)

func (a *testApp) do(t *testing.T, who caller, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who.id != "" {
		req.Header.Set(middleware.PartyIDHeader, who.id)
		req.Header.Set(middleware.PartyRoleHeader, who.role)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// decode re-encodes resp.Data into out
func decode(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// registerJune registers the June potato offer used across tests
func (a *testApp) registerJune(t *testing.T, stock int) ProductResponse {
	t.Helper()
	w, resp := a.do(t, farmer, http.MethodPost, "/api/v1/products", CreateProductRequest{
		Name:         "감자",
		SupplyAmount: stock,
		StartDate:    "2024-06-01",
		EndDate:      "2024-06-30",
		UnitPrice:    "1500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p ProductResponse
	decode(t, resp, &p)
	return p
}
