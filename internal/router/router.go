package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/config"
	"github.com/lincomp/stizun/internal/handler"
	"github.com/lincomp/stizun/internal/infra"
	"github.com/lincomp/stizun/internal/middleware"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
	"github.com/lincomp/stizun/internal/service"
	"github.com/lincomp/stizun/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	fetchers := infra.NewFetcherRegistry()
	httpFetcher := infra.NewHTTPDescriptionFetcher(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
	fetchers.RegisterDescription("http", httpFetcher)
	fetchers.RegisterImage("http", httpFetcher)
	fetchers.RegisterPdf("http", httpFetcher)

	engine := pricing.NewEngine(pricing.NewDenominationRounding(decimal.RequireFromString("0.05")))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	supplyItemRepo := repository.NewSupplyItemRepository(db)
	marginRangeRepo := repository.NewMarginRangeRepository(db)
	taxClassRepo := repository.NewTaxClassRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(cfg)
	productSvc := service.NewProductService(productRepo, marginRangeRepo, taxClassRepo, supplyItemRepo, historyRepo, engine, fetchers, service.PricingDefaults{
		TaxClassName:  cfg.DefaultTaxClassName,
		TaxPercentage: cfg.DefaultTaxPercentage,
	})
	supplyItemSvc := service.NewSupplyItemService(supplyItemRepo, productRepo, historyRepo, productSvc)
	marginRangeSvc := service.NewMarginRangeService(marginRangeRepo, productRepo, historyRepo, productSvc)

	// Worker dispatcher — injected into handlers that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc, rdb)
	supplyItemsH := handler.NewSupplyItemsHandler(supplyItemSvc)
	marginRangesH := handler.NewMarginRangesHandler(marginRangeSvc)
	suppliersH := handler.NewSuppliersHandler(supplierRepo)
	taxClassesH := handler.NewTaxClassesHandler(taxClassRepo)
	syncH := handler.NewSyncHandler(dispatcher, rdb)
	historyH := handler.NewHistoryHandler(historyRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes — everything behind the admin token
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	admin := middleware.RequireRole("admin")
	v1 := r.Group("/v1", jwtMW, admin)
	{
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.GetByID)
		v1.GET("/products/:id/quote", productsH.Quote)
		v1.POST("/products", productsH.Create)
		v1.PUT("/products/:id", productsH.Update)
		v1.POST("/products/bootstrap", productsH.Bootstrap)
		v1.POST("/products/:id/components", productsH.AddComponent)
		v1.DELETE("/products/:id/components/:sid", productsH.RemoveComponent)
		v1.PATCH("/products/:id/disable", productsH.Disable)
		v1.PATCH("/products/:id/enable", productsH.Enable)

		v1.GET("/supply-items", supplyItemsH.List)
		v1.GET("/supply-items/:id", supplyItemsH.GetByID)
		v1.POST("/supply-items", supplyItemsH.Create)
		v1.PUT("/supply-items/:id", supplyItemsH.Update)
		v1.PATCH("/supply-items/:id/status", supplyItemsH.SetStatus)

		v1.GET("/margin-ranges", marginRangesH.List)
		v1.POST("/margin-ranges", marginRangesH.Create)
		v1.DELETE("/margin-ranges/:id", marginRangesH.Delete)

		v1.GET("/suppliers", suppliersH.List)
		v1.GET("/suppliers/:id", suppliersH.GetByID)
		v1.POST("/suppliers", suppliersH.Create)

		v1.GET("/tax-classes", taxClassesH.List)
		v1.POST("/tax-classes", taxClassesH.Create)

		v1.POST("/sync/run", syncH.Run)
		v1.GET("/sync/status", syncH.Status)

		v1.GET("/history", historyH.List)
	}

	return r
}
