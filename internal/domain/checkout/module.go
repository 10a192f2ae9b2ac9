package checkout

import (
	catalogRepository "glow_store/internal/domain/catalog/repository"
	"glow_store/internal/domain/checkout/handler"
	"glow_store/internal/domain/checkout/repository"
	"glow_store/internal/domain/checkout/service"
	"glow_store/internal/domain/rewards"
	userRepository "glow_store/internal/domain/user/repository"
	"glow_store/internal/pkg/middleware"
	"glow_store/internal/pkg/registry"
	"glow_store/internal/pkg/worker"

	"github.com/gin-gonic/gin"
)

// CheckoutModule 结算模块
type CheckoutModule struct{}

func init() {
	registry.Register(&CheckoutModule{})
}

func (m *CheckoutModule) Name() string {
	return "checkout"
}

func (m *CheckoutModule) Priority() int {
	// 依赖 rewards 模块先初始化
	return 20
}

func (m *CheckoutModule) Init(ctx *registry.ModuleContext) error {
	orderRepo := repository.NewOrderRepository(ctx.DB)
	cartRepo := catalogRepository.NewCartRepository(ctx.DB)
	productRepo := catalogRepository.NewProductRepository(ctx.DB)
	userRepo := userRepository.NewUserRepository(ctx.DB)

	rewardsService := rewards.Service()

	// 推荐奖励走异步队列，不阻塞下单
	pool := worker.NewWorkerPool(rewardsService, 3, 100)
	pool.Start()

	checkoutService := service.NewCheckoutService(
		orderRepo, cartRepo, productRepo, userRepo,
		rewardsService, pool,
	)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)

	setupRoutes(ctx.Router, checkoutHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CheckoutHandler) {
	// 下单和查单对游客开放，有 token 就带上身份
	r.POST("/checkout/cod", middleware.OptionalAuthMiddleware(), h.PlaceCODOrder)
	r.GET("/orders/:orderNo", middleware.OptionalAuthMiddleware(), h.GetOrder)

	// 订单列表需要登录
	r.GET("/orders", middleware.AuthMiddleware(), h.ListOrders)
}
