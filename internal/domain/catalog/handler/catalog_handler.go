package handler

import (
	"net/http"

	"glow_store/internal/domain/catalog/model"
	"glow_store/internal/domain/catalog/service"
	"glow_store/pkg/response"
	"glow_store/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler 商品/购物车处理器
type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProducts 商品列表
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	products, total, err := h.service.ListProducts(p.Page, p.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to fetch products")
		return
	}
	response.Success(c, utils.PageResult{List: products, Total: total, Page: p.Page, Limit: p.Limit})
}

// CreateProductInput 新建商品输入
type CreateProductInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	PriceAmount float64 `json:"priceAmount" binding:"required,gt=0"`
	Inventory   *int    `json:"inventory"`
}

// CreateProduct 新建商品（管理员）
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	product := &model.Product{
		Title:       input.Title,
		Description: input.Description,
		PriceAmount: input.PriceAmount,
		Inventory:   input.Inventory,
		IsActive:    true,
	}
	if err := h.service.CreateProduct(product); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to create product")
		return
	}
	response.Success(c, product)
}

// CreateCart 新建购物车（登录用户或游客）
func (h *CatalogHandler) CreateCart(c *gin.Context) {
	var userID *string
	if id := c.GetString("userID"); id != "" {
		userID = &id
	}

	cart, err := h.service.CreateCart(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to create cart")
		return
	}
	response.Success(c, cart)
}

// AddToCartInput 加购输入
type AddToCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart 加购
func (h *CatalogHandler) AddToCart(c *gin.Context) {
	cartID := c.Param("id")

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.AddToCart(cartID, input.ProductID, input.Quantity); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "Item added"})
}

// GetCart 查看购物车
func (h *CatalogHandler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "Cart not found")
		return
	}
	response.Success(c, cart)
}
