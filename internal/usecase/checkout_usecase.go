package usecase

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/pkg/metrics"

	"github.com/google/uuid"
)

// 決済ゲートウェイに作らせた注文（支払い前のintent）
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

var (
	// 通信エラー・タイムアウト
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ゲートウェイ側に該当取引がない
	ErrPaymentNotFound = errors.New("payment not found")
)

// PaymentGatewayは外部決済の約束。金額は最小通貨単位で渡す
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (PaymentOrder, error)
	VerifyPayment(ctx context.Context, transactionID string) error
}

type CartItem struct {
	ProductID int64 `json:"product_id"`
	Count     int64 `json:"count"`
}

// 見積もり時点の単価スナップショット
type PricedItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Count     int64  `json:"count"`
}

type QuoteOutput struct {
	Total      int64        `json:"total"`
	Items      []PricedItem `json:"items"`
	CouponCode string       `json:"coupon_code,omitempty"`
}

type CheckoutInput struct {
	Items         []CartItem
	CouponCode    string
	Address       string
	PhoneNumber   string
	TransactionID string
}

type CheckoutUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	coupons    repo.CouponRepository
	inventory  repo.InventoryRepository
	gateway    PaymentGateway
	metrics    *metrics.CheckoutMetrics // nilなら計測なし

	gatewayTimeout time.Duration
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	products repo.ProductRepository,
	coupons repo.CouponRepository,
	inventory repo.InventoryRepository,
	gateway PaymentGateway,
	m *metrics.CheckoutMetrics,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:             tx,
		orders:         orders,
		orderItems:     orderItems,
		products:       products,
		coupons:        coupons,
		inventory:      inventory,
		gateway:        gateway,
		metrics:        m,
		gatewayTimeout: 10 * time.Second,
	}
}

// Quote はカートの検証と合計計算だけを行う。副作用なし。
// 在庫もここでは読むだけで、減らすのは予約（reserve）の仕事
func (u *CheckoutUsecase) Quote(ctx context.Context, items []CartItem, couponCode string) (QuoteOutput, error) {
	if len(items) == 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "no products are found")
	}

	var total int64
	priced := make([]PricedItem, 0, len(items))

	for _, it := range items {
		if it.ProductID <= 0 || it.Count <= 0 {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart item")
		}

		p, err := u.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return QuoteOutput{}, NewHTTPError(http.StatusNotFound, "product does not found")
		}
		if err != nil {
			return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if p.Stock < it.Count {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "product quantity not in stock")
		}

		total += p.Price * it.Count
		priced = append(priced, PricedItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Count:     it.Count,
		})
	}

	code := strings.TrimSpace(couponCode)
	if code != "" {
		coupon, err := u.coupons.FindByCode(ctx, code)
		if errors.Is(err, repo.ErrNotFound) {
			return QuoteOutput{}, NewHTTPError(http.StatusNotFound, "no coupon found")
		}
		if err != nil {
			return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !coupon.Active {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "coupon is not active")
		}

		total = applyDiscount(total, coupon.Discount)
	}

	if total < 0 {
		total = 0
	}

	return QuoteOutput{Total: total, Items: priced, CouponCode: code}, nil
}

// 整数の最小通貨単位のまま四捨五入する。浮動小数点は使わない
func applyDiscount(total int64, discount int64) int64 {
	if discount <= 0 {
		return total
	}
	if discount >= 100 {
		return 0
	}
	return (total*(100-discount) + 50) / 100
}

// GenerateGatewayOrder は見積もりを取り、決済ゲートウェイの注文を作る。
// 在庫の予約はしない（支払い前に副作用を残さない）
func (u *CheckoutUsecase) GenerateGatewayOrder(ctx context.Context, items []CartItem, couponCode string) (PaymentOrder, error) {
	quote, err := u.Quote(ctx, items, couponCode)
	if err != nil {
		return PaymentOrder{}, err
	}
	return u.createPaymentOrder(ctx, quote.Total)
}

func (u *CheckoutUsecase) createPaymentOrder(ctx context.Context, amount int64) (PaymentOrder, error) {
	tctx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()

	receipt := "receipt_" + uuid.NewString()
	po, err := u.gateway.CreateOrder(tctx, amount, "INR", receipt)
	if err != nil {
		u.countFailure("gateway")
		return PaymentOrder{}, NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
	}
	return po, nil
}

// Checkout は検証 → 在庫予約 → 決済確認 → 注文確定 の順で進める。
// 予約より後で失敗したら、減らした在庫を必ず戻してからエラーを返す。
// 部分的に確定した注文が外から見えることはない
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Address) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "address is required")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "phone number is required")
	}
	txnID := strings.TrimSpace(in.TransactionID)
	if txnID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "transaction id is required")
	}

	// 同じ取引IDならすでに確定済みの注文を返す
	existing, found, err := u.orders.FindByTransactionID(ctx, txnID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if found {
		return u.buildOutput(ctx, existing)
	}

	// 1) 検証と見積もり（ここまで副作用なし）
	quote, err := u.Quote(ctx, in.Items, in.CouponCode)
	if err != nil {
		u.countFailure("validation")
		return OrderOutput{}, err
	}

	// 2) 在庫予約（全件成功か、何もしないか）
	applied, err := u.reserve(ctx, quote.Items)
	if err != nil {
		u.countFailure("stock")
		return OrderOutput{}, err
	}

	// 3) 決済の確認。失敗したら予約を補償してから返す
	if err := u.verifyPayment(ctx, txnID); err != nil {
		u.release(ctx, applied)
		return OrderOutput{}, err
	}

	// 4) 確定。注文と明細を1トランザクションで書く
	now := time.Now()
	order := model.Order{
		UserID:        userID,
		Address:       strings.TrimSpace(in.Address),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		Amount:        quote.Total,
		CouponCode:    quote.CouponCode,
		TransactionID: txnID,
		Status:        model.OrderStatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	orderItems := make([]model.OrderItem, 0, len(quote.Items))
	for _, it := range quote.Items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: it.Name,
			UnitPriceSnapshot:   it.UnitPrice,
			Quantity:            it.Count,
			CreatedAt:           now,
		})
	}

	var orderID int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, id, orderItems); err != nil {
			return err
		}
		orderID = id
		return nil
	})

	if errors.Is(err, repo.ErrDuplicate) {
		// 競合で同じ取引IDが先に確定した。自分の予約は余分なので戻す
		u.release(ctx, applied)
		ex, found2, err2 := u.orders.FindByTransactionID(ctx, txnID)
		if err2 == nil && found2 {
			return u.buildOutput(ctx, ex)
		}
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "transaction already used")
	}
	if err != nil {
		u.release(ctx, applied)
		u.countFailure("persist")
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.metrics != nil {
		u.metrics.OrdersPlaced.Inc()
	}

	order.ID = orderID
	return toOrderOutput(order, orderItems), nil
}

// reserve は全明細の在庫を条件付きUPDATEで減らす。
// 途中で足りない商品が出たら、そこまでの減算をすべて戻して失敗にする
func (u *CheckoutUsecase) reserve(ctx context.Context, items []PricedItem) ([]PricedItem, error) {
	applied := make([]PricedItem, 0, len(items))

	for _, it := range items {
		ok, err := u.inventory.DecreaseStockIfEnough(ctx, it.ProductID, it.Count)
		if err != nil {
			u.release(ctx, applied)
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			u.release(ctx, applied)
			return nil, NewHTTPError(http.StatusBadRequest, "product quantity not in stock")
		}
		applied = append(applied, it)
	}

	return applied, nil
}

// release は予約の補償。呼び出し元のctxが死んでいても在庫は戻す
func (u *CheckoutUsecase) release(ctx context.Context, applied []PricedItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range applied {
		if err := u.inventory.IncreaseStock(ctx, it.ProductID, it.Count); err != nil {
			log.Printf("stock release failed: product=%d qty=%d err=%v", it.ProductID, it.Count, err)
		}
	}
}

func (u *CheckoutUsecase) verifyPayment(ctx context.Context, transactionID string) error {
	tctx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()

	err := u.gateway.VerifyPayment(tctx, transactionID)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPaymentNotFound) {
		u.countFailure("payment")
		return NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}
	u.countFailure("gateway")
	return NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
}

func (u *CheckoutUsecase) buildOutput(ctx context.Context, o model.Order) (OrderOutput, error) {
	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, items), nil
}

func (u *CheckoutUsecase) countFailure(reason string) {
	if u.metrics != nil {
		u.metrics.Failures.WithLabelValues(reason).Inc()
	}
}
