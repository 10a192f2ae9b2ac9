package service

import (
	"errors"

	"glow_store/internal/domain/catalog/model"
	"glow_store/internal/domain/catalog/repository"
)

// CatalogService 商品/购物车服务接口
type CatalogService interface {
	ListProducts(page, limit int) ([]model.Product, int64, error)
	CreateProduct(product *model.Product) error
	CreateCart(userID *string) (*model.Cart, error)
	AddToCart(cartID, productID string, quantity int) error
	GetCart(cartID string) (*model.Cart, error)
}

type catalogService struct {
	products repository.ProductRepository
	carts    repository.CartRepository
}

// NewCatalogService 创建商品服务
func NewCatalogService(products repository.ProductRepository, carts repository.CartRepository) CatalogService {
	return &catalogService{products: products, carts: carts}
}

func (s *catalogService) ListProducts(page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.products.ListActive((page-1)*limit, limit)
}

func (s *catalogService) CreateProduct(product *model.Product) error {
	return s.products.Create(product)
}

func (s *catalogService) CreateCart(userID *string) (*model.Cart, error) {
	cart := &model.Cart{
		UserID: userID,
		Status: model.CartStatusActive,
	}
	if err := s.carts.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *catalogService) AddToCart(cartID, productID string, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	cart, err := s.carts.GetWithItems(cartID)
	if err != nil {
		return err
	}
	if cart.Status != model.CartStatusActive {
		return errors.New("cart is no longer active")
	}

	// 商品必须存在且上架
	product, err := s.products.GetByID(productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return errors.New("product is not available")
	}

	return s.carts.AddItem(&model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (s *catalogService) GetCart(cartID string) (*model.Cart, error) {
	return s.carts.GetWithItems(cartID)
}
