package handler

import (
	"errors"
	"net/http"

	"glow_store/internal/domain/rewards/service"
	"glow_store/pkg/logger"
	"glow_store/pkg/response"
	"glow_store/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RewardsHandler 积分处理器
type RewardsHandler struct {
	service service.RewardsService
}

// NewRewardsHandler 创建处理器
func NewRewardsHandler(service service.RewardsService) *RewardsHandler {
	return &RewardsHandler{service: service}
}

// businessError 业务规则错误 → HTTP 状态码 + 业务码
// 返回 handled=false 表示不是业务错误（存储故障等），由调用处按 500 处理
func businessError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNotRewardsMember):
		response.Error(c, http.StatusBadRequest, response.ErrNotRewardsMember, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		response.Error(c, http.StatusBadRequest, response.ErrAlreadyMember, err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Error(c, http.StatusBadRequest, response.ErrAlreadyCheckedIn, err.Error())
	case errors.Is(err, service.ErrRewardNotFound):
		response.Error(c, http.StatusNotFound, response.ErrRewardNotFound, err.Error())
	case errors.Is(err, service.ErrRewardInactive):
		response.Error(c, http.StatusBadRequest, response.ErrRewardInactive, err.Error())
	case errors.Is(err, service.ErrRewardNotYetValid):
		response.Error(c, http.StatusBadRequest, response.ErrRewardNotYetValid, err.Error())
	case errors.Is(err, service.ErrRewardExpired):
		response.Error(c, http.StatusBadRequest, response.ErrRewardExpired, err.Error())
	case errors.Is(err, service.ErrInsufficientPoints):
		response.Error(c, http.StatusBadRequest, response.ErrInsufficientPoints, err.Error())
	case errors.Is(err, service.ErrTierTooLow):
		response.Error(c, http.StatusBadRequest, response.ErrTierTooLow, err.Error())
	case errors.Is(err, service.ErrRedemptionLimitReached):
		response.Error(c, http.StatusBadRequest, response.ErrRedemptionLimit, err.Error())
	case errors.Is(err, service.ErrSoldOut):
		response.Error(c, http.StatusBadRequest, response.ErrRewardSoldOut, err.Error())
	case errors.Is(err, service.ErrReferralCodeExhausted):
		response.Error(c, http.StatusInternalServerError, response.ErrReferralCode, err.Error())
	default:
		return false
	}
	return true
}

// internalError 记录存储故障，对外只给通用消息
func internalError(c *gin.Context, op string, err error) {
	if logger.Log != nil {
		logger.Log.Error(op+" failed",
			zap.String("request_id", c.GetString("RequestID")),
			zap.Error(err))
	}
	response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "An unexpected error occurred")
}

// JoinInput 入会请求体
type JoinInput struct {
	ReferralCode string `json:"referralCode"`
}

// Join 加入积分计划
// @Summary 加入 Glow Rewards
// @Tags Rewards
// @Router /rewards/join [post]
func (h *RewardsHandler) Join(c *gin.Context) {
	userID := c.GetString("userID")

	// 请求体可为空
	var input JoinInput
	_ = c.ShouldBindJSON(&input)

	result, err := h.service.Join(userID, input.ReferralCode)
	if err != nil {
		if businessError(c, err) {
			return
		}
		internalError(c, "join rewards", err)
		return
	}
	response.Success(c, result)
}

// Balance 余额面板
// @Summary 积分余额、等级与最近流水
// @Tags Rewards
// @Router /rewards/balance [get]
func (h *RewardsHandler) Balance(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.service.GetBalance(userID)
	if err != nil {
		internalError(c, "get balance", err)
		return
	}
	response.Success(c, result)
}

// CheckIn 每日签到
// @Summary 每日签到
// @Tags Rewards
// @Router /rewards/checkin [post]
func (h *RewardsHandler) CheckIn(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.service.CheckIn(userID)
	if err != nil {
		if businessError(c, err) {
			return
		}
		internalError(c, "check-in", err)
		return
	}
	response.Success(c, result)
}

// RedeemInput 兑换请求体
type RedeemInput struct {
	RewardID string `json:"rewardId" binding:"required"`
}

// Redeem 积分兑换
// @Summary 兑换目录奖励
// @Tags Rewards
// @Router /rewards/redeem [post]
func (h *RewardsHandler) Redeem(c *gin.Context) {
	userID := c.GetString("userID")

	var input RedeemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Reward ID is required")
		return
	}

	result, err := h.service.Redeem(userID, input.RewardID)
	if err != nil {
		if businessError(c, err) {
			return
		}
		internalError(c, "redeem reward", err)
		return
	}
	response.Success(c, result)
}

// HistoryQuery 流水查询参数
type HistoryQuery struct {
	utils.Pagination
	Type string `form:"type"`
}

// History 流水分页查询
// @Summary 积分流水
// @Tags Rewards
// @Router /rewards/history [get]
func (h *RewardsHandler) History(c *gin.Context) {
	userID := c.GetString("userID")

	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := q.GetPageOffset()

	txs, total, err := h.service.GetHistory(userID, offset, limit, q.Type)
	if err != nil {
		internalError(c, "get history", err)
		return
	}
	response.Success(c, utils.PageResult{List: txs, Total: total, Page: q.Page, Limit: limit})
}

// Catalog 兑换目录（公开）
// @Summary 兑换目录与等级说明
// @Tags Rewards
// @Router /rewards/catalog [get]
func (h *RewardsHandler) Catalog(c *gin.Context) {
	result, err := h.service.GetCatalog()
	if err != nil {
		internalError(c, "get catalog", err)
		return
	}
	response.Success(c, result)
}

// Seed 写入默认等级和目录（管理员）
// @Summary 初始化默认等级/奖励数据
// @Tags Rewards
// @Router /rewards/seed [post]
func (h *RewardsHandler) Seed(c *gin.Context) {
	result, err := h.service.Seed()
	if err != nil {
		internalError(c, "seed rewards", err)
		return
	}
	response.Success(c, result)
}
