package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	catalogModel "glow_store/internal/domain/catalog/model"
	catalogRepo "glow_store/internal/domain/catalog/repository"
	"glow_store/internal/domain/checkout/model"
	"glow_store/internal/domain/checkout/repository"
	rewardsModel "glow_store/internal/domain/rewards/model"
	rewardsService "glow_store/internal/domain/rewards/service"
	userRepo "glow_store/internal/domain/user/repository"
	"glow_store/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartNotActive      = errors.New("cart has already been purchased")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrOutOfStock         = errors.New("not enough stock")
)

// ReferralQueue 推荐奖励异步入口，结算流程不直接依赖 worker 包
type ReferralQueue interface {
	Enqueue(referrerID, referredUserID string)
}

// CODOrderInput 货到付款下单入参
type CODOrderInput struct {
	CartID        string          `json:"cartId" binding:"required"`
	CustomerName  string          `json:"customerName" binding:"required"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone" binding:"required"`
	Address       json.RawMessage `json:"address"`
}

// CODOrderResult 下单结果
type CODOrderResult struct {
	OrderID       string  `json:"orderId"`
	OrderNo       string  `json:"orderNo"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PointsAwarded int     `json:"pointsAwarded"`
}

// CheckoutService 结算服务接口
type CheckoutService interface {
	PlaceCODOrder(userID *string, input *CODOrderInput) (*CODOrderResult, error)
	GetOrder(orderNo string) (*model.Order, error)
	ListOrders(customerID string, page, limit int) ([]model.Order, int64, error)
}

type checkoutService struct {
	orders    repository.OrderRepository
	carts     catalogRepo.CartRepository
	products  catalogRepo.ProductRepository
	users     userRepo.UserRepository
	rewards   rewardsService.RewardsService
	referrals ReferralQueue
	now       func() time.Time
}

func NewCheckoutService(
	orders repository.OrderRepository,
	carts catalogRepo.CartRepository,
	products catalogRepo.ProductRepository,
	users userRepo.UserRepository,
	rewards rewardsService.RewardsService,
	referrals ReferralQueue,
) CheckoutService {
	return &checkoutService{
		orders:    orders,
		carts:     carts,
		products:  products,
		users:     users,
		rewards:   rewards,
		referrals: referrals,
		now:       time.Now,
	}
}

// PlaceCODOrder 货到付款下单
// 流程：校验购物车 -> 条件扣库存 -> 落订单 -> 关闭购物车 -> 登录用户加积分 -> 首单触发推荐奖励。
// 库存扣减用条件 UPDATE 兜底并发；后续步骤失败时回补已扣的库存。
// userID 为 nil 表示游客下单，跳过积分和推荐逻辑。
func (s *checkoutService) PlaceCODOrder(userID *string, input *CODOrderInput) (*CODOrderResult, error) {
	cart, err := s.carts.GetWithItems(input.CartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if cart.Status != catalogModel.CartStatusActive {
		return nil, ErrCartNotActive
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// 先按快照价格算总额并校验商品可售，减少扣了库存又回补的概率
	var total float64
	orderItems := make([]model.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if !item.Product.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.Product.Title)
		}
		if item.Product.Inventory != nil && *item.Product.Inventory < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, item.Product.Title)
		}
		total += item.Product.PriceAmount * float64(item.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Product.Title,
			Price:     item.Product.PriceAmount,
			Quantity:  item.Quantity,
		})
	}

	// 条件扣库存，任一条失败就把已扣的补回去
	decremented := make([]catalogModel.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		ok, err := s.products.DecrementInventory(item.ProductID, item.Quantity)
		if err == nil && !ok {
			err = fmt.Errorf("%w: %s", ErrOutOfStock, item.Product.Title)
		}
		if err != nil {
			s.compensateInventory(decremented)
			return nil, err
		}
		decremented = append(decremented, item)
	}

	itemsJSON, err := json.Marshal(orderItems)
	if err != nil {
		s.compensateInventory(decremented)
		return nil, err
	}

	order := &model.Order{
		OrderNo:       s.generateOrderNo(),
		CustomerID:    userID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Address:       input.Address,
		Items:         itemsJSON,
		Amount:        total,
		Currency:      "TND",
		PaymentMethod: model.PaymentMethodCOD,
		Status:        model.OrderStatusPending,
	}
	if err := s.orders.Create(order); err != nil {
		s.compensateInventory(decremented)
		return nil, err
	}

	if err := s.carts.MarkPurchased(cart.ID, s.now()); err != nil {
		// 订单已成立，购物车状态修不回来只记日志
		logger.Log.Error("Failed to mark cart as purchased",
			zap.String("cart_id", cart.ID), zap.Error(err))
	}

	result := &CODOrderResult{
		OrderID:  order.ID,
		OrderNo:  order.OrderNo,
		Amount:   order.Amount,
		Currency: order.Currency,
	}

	if userID != nil {
		result.PointsAwarded = s.settleRewards(*userID, order)
	}

	logger.Log.Info("COD order placed",
		zap.String("order_no", order.OrderNo),
		zap.Float64("amount", order.Amount),
		zap.Int("items", len(orderItems)))

	return result, nil
}

// settleRewards 下单后的积分结算：购买积分 + 首单推荐奖励
// 积分失败不影响订单，只记日志
func (s *checkoutService) settleRewards(userID string, order *model.Order) int {
	base := int(math.Floor(order.Amount))
	awarded := 0
	if base > 0 {
		res, err := s.rewards.AwardPoints(userID, rewardsModel.ActionPurchase, rewardsService.AwardOptions{
			Points:  &base,
			OrderID: &order.ID,
		})
		if err != nil {
			logger.Log.Warn("Failed to award purchase points",
				zap.String("user_id", userID),
				zap.String("order_no", order.OrderNo),
				zap.Error(err))
		} else if res.Success {
			awarded = res.PointsAwarded
		}
	}

	user, err := s.users.GetByID(userID)
	if err != nil || user.ReferredByID == nil {
		return awarded
	}
	count, err := s.orders.CountByCustomer(userID)
	if err != nil {
		logger.Log.Warn("Failed to count customer orders",
			zap.String("user_id", userID), zap.Error(err))
		return awarded
	}
	// 刚落库的这一单计入后 count==1 即首单
	if count == 1 && s.referrals != nil {
		s.referrals.Enqueue(*user.ReferredByID, userID)
	}
	return awarded
}

func (s *checkoutService) compensateInventory(items []catalogModel.CartItem) {
	for _, item := range items {
		if err := s.products.IncrementInventory(item.ProductID, item.Quantity); err != nil {
			logger.Log.Error("Failed to restore inventory",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *checkoutService) generateOrderNo() string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("GS%s%s", s.now().Format("20060102150405"), frag)
}

func (s *checkoutService) GetOrder(orderNo string) (*model.Order, error) {
	return s.orders.GetByOrderNo(orderNo)
}

func (s *checkoutService) ListOrders(customerID string, page, limit int) ([]model.Order, int64, error) {
	return s.orders.ListByCustomer(customerID, page, limit)
}
