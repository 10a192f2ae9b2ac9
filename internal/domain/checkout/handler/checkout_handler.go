package handler

import (
	"errors"
	"net/http"

	"glow_store/internal/domain/checkout/service"
	"glow_store/pkg/logger"
	"glow_store/pkg/response"
	"glow_store/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutHandler 结算处理器
type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(service service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// PlaceCODOrder 货到付款下单，支持游客和登录用户
// @Summary 货到付款下单
// @Tags Checkout
// @Router /checkout/cod [post]
func (h *CheckoutHandler) PlaceCODOrder(c *gin.Context) {
	var input service.CODOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	// 登录用户带上身份，游客为 nil
	var userID *string
	if v := c.GetString("userID"); v != "" {
		userID = &v
	}

	result, err := h.service.PlaceCODOrder(userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			response.Error(c, http.StatusNotFound, response.ErrCartNotFound, err.Error())
		case errors.Is(err, service.ErrCartEmpty), errors.Is(err, service.ErrCartNotActive):
			response.Error(c, http.StatusBadRequest, response.ErrCartEmpty, err.Error())
		case errors.Is(err, service.ErrProductUnavailable):
			response.Error(c, http.StatusBadRequest, response.ErrProductUnavailable, err.Error())
		case errors.Is(err, service.ErrOutOfStock):
			response.Error(c, http.StatusBadRequest, response.ErrOutOfStock, err.Error())
		default:
			logger.Log.Error("place cod order failed",
				zap.String("request_id", c.GetString("RequestID")),
				zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.ErrOrderFailed, "Failed to place order")
		}
		return
	}

	response.Success(c, result)
}

// GetOrder 按订单号查询订单
// @Summary 查询订单
// @Tags Checkout
// @Router /orders/{orderNo} [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderNo := c.Param("orderNo")

	order, err := h.service.GetOrder(orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderFailed, "Order not found")
			return
		}
		logger.Log.Error("get order failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "An unexpected error occurred")
		return
	}

	// 游客单谁都能查（只有单号的人），登录用户的单只能本人查
	if order.CustomerID != nil && *order.CustomerID != c.GetString("userID") {
		response.Error(c, http.StatusNotFound, response.ErrOrderFailed, "Order not found")
		return
	}

	response.Success(c, order)
}

// ListOrders 当前用户的订单列表
// @Summary 我的订单
// @Tags Checkout
// @Router /orders [get]
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	userID := c.GetString("userID")

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	_, limit := p.GetPageOffset()

	orders, total, err := h.service.ListOrders(userID, p.Page, limit)
	if err != nil {
		logger.Log.Error("list orders failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "An unexpected error occurred")
		return
	}

	response.Success(c, utils.PageResult{List: orders, Total: total, Page: p.Page, Limit: limit})
}
