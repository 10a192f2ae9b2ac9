package rewards

import (
	"glow_store/internal/domain/rewards/handler"
	"glow_store/internal/domain/rewards/repository"
	"glow_store/internal/domain/rewards/service"
	userRepository "glow_store/internal/domain/user/repository"
	"glow_store/internal/pkg/config"
	"glow_store/internal/pkg/middleware"
	"glow_store/internal/pkg/registry"
	"glow_store/pkg/cache"

	"github.com/gin-gonic/gin"
)

// RewardsModule 积分模块
type RewardsModule struct {
	service service.RewardsService
}

var instance = &RewardsModule{}

func init() {
	registry.Register(instance)
}

// Service 暴露给其他模块（checkout）使用
func Service() service.RewardsService {
	return instance.service
}

func (m *RewardsModule) Name() string {
	return "rewards"
}

func (m *RewardsModule) Priority() int {
	// 在 user 之后、checkout 之前
	return 10
}

func (m *RewardsModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := userRepository.NewUserRepository(ctx.DB)
	tierRepo := repository.NewTierRepository(ctx.DB)
	ledgerRepo := repository.NewLedgerRepository(ctx.DB)
	catalogRepo := repository.NewCatalogRepository(ctx.DB)
	cacheService := cache.NewRedisCache(ctx.Redis)

	m.service = service.NewRewardsService(
		userRepo, tierRepo, ledgerRepo, catalogRepo,
		ctx.Redis, cacheService,
		service.PolicyFromConfig(config.GlobalConfig.Rewards),
	)
	rewardsHandler := handler.NewRewardsHandler(m.service)

	// 2. 路由注册
	setupRoutes(ctx.Router, rewardsHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.RewardsHandler) {
	g := r.Group("/rewards")

	// 公开：兑换目录
	g.GET("/catalog", h.Catalog)

	// 需要登录
	authorized := g.Group("")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.POST("/join", h.Join)
		authorized.GET("/balance", h.Balance)
		authorized.POST("/checkin", h.CheckIn)
		authorized.POST("/redeem", h.Redeem)
		authorized.GET("/history", h.History)

		// 管理员：种子数据
		admin := authorized.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/seed", h.Seed)
		}
	}
}
