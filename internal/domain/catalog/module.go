package catalog

import (
	"glow_store/internal/domain/catalog/handler"
	"glow_store/internal/domain/catalog/repository"
	"glow_store/internal/domain/catalog/service"
	"glow_store/internal/pkg/middleware"
	"glow_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CatalogModule 商品模块
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 5
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	productRepo := repository.NewProductRepository(ctx.DB)
	cartRepo := repository.NewCartRepository(ctx.DB)
	catalogService := service.NewCatalogService(productRepo, cartRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	setupRoutes(ctx.Router, catalogHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	// 商品浏览和购物车对游客开放（COD 下单支持游客）
	r.GET("/products", h.ListProducts)

	carts := r.Group("/carts")
	carts.Use(middleware.OptionalAuthMiddleware())
	{
		carts.POST("/", h.CreateCart)
		carts.GET("/:id", h.GetCart)
		carts.POST("/:id/items", h.AddToCart)
	}

	// 管理员建品
	admin := r.Group("/products")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/", h.CreateProduct)
	}
}
