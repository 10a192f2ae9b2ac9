package service

import (
	"sync"
	"time"

	"glow_store/internal/domain/rewards/model"
	"glow_store/internal/domain/rewards/repository"
	userRepository "glow_store/internal/domain/user/repository"
	"glow_store/internal/pkg/config"
	"glow_store/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// Policy 积分策略参数，来自配置
type Policy struct {
	CodePrefix        string
	WelcomePoints     int
	ReferralPoints    int
	CheckInPoints     int
	StreakBonusDays   int
	StreakBonusPoints int
	CatalogCacheTTL   time.Duration
}

// PolicyFromConfig 从全局配置构造策略
func PolicyFromConfig(cfg config.RewardsConfig) Policy {
	return Policy{
		CodePrefix:        cfg.CodePrefix,
		WelcomePoints:     cfg.WelcomePoints,
		ReferralPoints:    cfg.ReferralPoints,
		CheckInPoints:     cfg.CheckInPoints,
		StreakBonusDays:   cfg.StreakBonusDays,
		StreakBonusPoints: cfg.StreakBonusPoints,
		CatalogCacheTTL:   time.Duration(cfg.CatalogCacheTTL) * time.Second,
	}
}

// RewardsService 积分服务接口
type RewardsService interface {
	Join(userID string, referralCode string) (*JoinResult, error)
	AwardPoints(userID string, action model.RewardAction, opts AwardOptions) (*AwardResult, error)
	UpdateUserTier(userID string, lifetimePoints int) error
	CheckIn(userID string) (*CheckInResult, error)
	Redeem(userID, rewardID string) (*RedeemResult, error)
	ProcessReferralReward(referrerID, referredUserID string) error
	GetBalance(userID string) (*BalanceResult, error)
	GetHistory(userID string, offset, limit int, txType string) ([]model.Transaction, int64, error)
	GetCatalog() (*CatalogResult, error)
	Seed() (*SeedResult, error)
}

// rewardsService 实现
type rewardsService struct {
	users   userRepository.UserRepository
	tiers   repository.TierRepository
	ledger  repository.LedgerRepository
	catalog repository.CatalogRepository
	rdb     *redis.Client       // 可为 nil（单测）
	cache   cache.CacheService  // 可为 nil（单测）
	policy  Policy

	soldOutMap sync.Map // 本地缓存：已售罄的奖励ID，省一次 Redis/DB 往返

	now func() time.Time // 单测注入时钟
}

// NewRewardsService 创建积分服务
func NewRewardsService(
	users userRepository.UserRepository,
	tiers repository.TierRepository,
	ledger repository.LedgerRepository,
	catalog repository.CatalogRepository,
	rdb *redis.Client,
	cacheService cache.CacheService,
	policy Policy,
) RewardsService {
	return &rewardsService{
		users:   users,
		tiers:   tiers,
		ledger:  ledger,
		catalog: catalog,
		rdb:     rdb,
		cache:   cacheService,
		policy:  policy,
		now:     time.Now,
	}
}

// midnight 截断到当天零点（本地时区）
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
