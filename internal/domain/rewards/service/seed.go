package service

import (
	"context"
	"encoding/json"
	"fmt"

	"glow_store/internal/domain/rewards/model"
)

// SeedResult 种子执行结果
type SeedResult struct {
	TiersSeeded   int `json:"tiersSeeded"`
	RewardsSeeded int `json:"rewardsSeeded"`
}

func benefitsJSON(benefits ...string) json.RawMessage {
	data, _ := json.Marshal(benefits)
	return data
}

// defaultTiers 默认等级配置
var defaultTiers = []model.Tier{
	{
		Name: "Starter", Slug: "starter", MinPoints: 0, PointsMultiplier: 1,
		Icon: "🌱", Color: "#10b981", Order: 1,
		Benefits: benefitsJSON(
			"Earn 1 point per 1 TND spent",
			"Access to rewards catalog",
			"Birthday bonus points",
		),
	},
	{
		Name: "Glowing", Slug: "glowing", MinPoints: 500, PointsMultiplier: 1.25,
		Icon: "✨", Color: "#f59e0b", Order: 2,
		Benefits: benefitsJSON(
			"1.25x points on all purchases",
			"Birthday gift",
			"Early access to sales",
			"Exclusive member-only offers",
		),
	},
	{
		Name: "Radiant", Slug: "radiant", MinPoints: 1500, PointsMultiplier: 1.5,
		Icon: "💫", Color: "#f43f5e", Order: 3,
		Benefits: benefitsJSON(
			"1.5x points on all purchases",
			"Free shipping on all orders",
			"Early access to new products",
			"Exclusive products access",
			"Priority customer support",
		),
	},
	{
		Name: "Glass Skin", Slug: "glass-skin", MinPoints: 5000, PointsMultiplier: 2,
		Icon: "💎", Color: "#8b5cf6", Order: 4,
		Benefits: benefitsJSON(
			"2x points on all purchases",
			"Free express shipping",
			"First access to everything",
			"Exclusive VIP gifts",
			"Dedicated VIP support",
			"Annual appreciation gift",
		),
	},
}

// defaultRewards 默认兑换目录
var defaultRewards = []model.CatalogItem{
	{Name: "Free Sample Pack", Description: "Get a surprise sample with your next order",
		PointsCost: 100, Type: model.RewardTypeFreeSample, IsActive: true, Order: 1},
	{Name: "10 TND Off", Description: "Get 10 TND discount on your next order",
		PointsCost: 250, Type: model.RewardTypeDiscountAmount, DiscountValue: 10, IsActive: true, Order: 2},
	{Name: "25 TND Off", Description: "Get 25 TND discount on your next order",
		PointsCost: 500, Type: model.RewardTypeDiscountAmount, DiscountValue: 25, IsActive: true, IsFeatured: true, Order: 3},
	{Name: "Sheet Mask Set (5 pcs)", Description: "Luxurious sheet mask collection",
		PointsCost: 750, Type: model.RewardTypeFreeProduct, IsActive: true, Order: 4},
	{Name: "Free Travel-Size Product", Description: "Choose any travel-size product",
		PointsCost: 1000, Type: model.RewardTypeFreeProduct, IsActive: true, IsFeatured: true, Order: 5},
	{Name: "50 TND Off", Description: "Get 50 TND discount on your next order",
		PointsCost: 2000, Type: model.RewardTypeDiscountAmount, DiscountValue: 50, IsActive: true, Order: 6},
	{Name: "Free Full-Size Product", Description: "Choose any full-size product up to 100 TND",
		PointsCost: 5000, Type: model.RewardTypeFreeProduct, IsActive: true, IsFeatured: true, Order: 7},
	{Name: "Free Shipping", Description: "Free shipping on your next order",
		PointsCost: 150, Type: model.RewardTypeFreeShipping, IsActive: true, Order: 8},
	{Name: "15% Off Order", Description: "Get 15% off your entire order",
		PointsCost: 400, Type: model.RewardTypeDiscountPercent, DiscountValue: 15, IsActive: true, Order: 9},
}

// Seed 幂等写入默认等级和兑换目录，重复执行只更新不重复插入
func (s *rewardsService) Seed() (*SeedResult, error) {
	result := &SeedResult{}

	for i := range defaultTiers {
		tier := defaultTiers[i]
		if err := s.tiers.Upsert(&tier); err != nil {
			return nil, err
		}
		result.TiersSeeded++
	}

	for i := range defaultRewards {
		item := defaultRewards[i]
		if err := s.catalog.UpsertByName(&item); err != nil {
			return nil, err
		}
		result.RewardsSeeded++

		// 限量奖励清掉本地售罄缓存并把剩余库存预热进 Redis，
		// 补货后不用重启服务就能继续兑换
		if item.TotalAvailable > 0 {
			s.soldOutMap.Delete(item.ID)
			if s.rdb != nil {
				stockKey := fmt.Sprintf("rewards:stock:%s", item.ID)
				remaining := item.TotalAvailable - item.TotalRedeemed
				s.rdb.Set(context.Background(), stockKey, remaining, 0)
			}
		}
	}

	// 目录变了，缓存作废
	if s.cache != nil {
		_ = s.cache.Delete(context.Background(), catalogCacheKey)
	}

	return result, nil
}
