package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

// =====================
// Fakes（在庫は状態を持たせ、条件付き減算を本物どおりに模す）
// =====================

type fakeStore struct {
	mu       sync.Mutex
	products map[int64]model.Product
	coupons  map[string]model.Coupon

	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	nextID     int64

	// 指定した商品のCASだけ落とす（見積もりは通して予約で失敗させる）
	failDecreaseFor map[int64]bool
	// 確定トランザクションに注入するエラー
	txErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:        map[int64]model.Product{},
		coupons:         map[string]model.Coupon{},
		orders:          map[int64]model.Order{},
		orderItems:      map[int64][]model.OrderItem{},
		nextID:          1,
		failDecreaseFor: map[int64]bool{},
	}
}

func (s *fakeStore) addProduct(p model.Product) { s.products[p.ID] = p }

func (s *fakeStore) stockOf(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

// ProductRepository

func (s *fakeStore) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) Create(ctx context.Context, p model.Product) (int64, error) {
	panic("not used in checkout tests")
}
func (s *fakeStore) ListAll(ctx context.Context) ([]model.Product, error) {
	panic("not used in checkout tests")
}
func (s *fakeStore) ListByCollectionID(ctx context.Context, collectionID int64) ([]model.Product, error) {
	panic("not used in checkout tests")
}
func (s *fakeStore) AddPhotos(ctx context.Context, productID int64, photos []model.ProductPhoto) error {
	panic("not used in checkout tests")
}
func (s *fakeStore) Delete(ctx context.Context, productID int64) error {
	panic("not used in checkout tests")
}

// InventoryRepository

func (s *fakeStore) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDecreaseFor[productID] {
		return false, nil
	}
	p, ok := s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	s.products[productID] = p
	return true, nil
}

func (s *fakeStore) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.Stock += qty
	s.products[productID] = p
	return nil
}

// CouponRepository

func (s *fakeStore) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return model.Coupon{}, repo.ErrNotFound
	}
	return c, nil
}

type fakeCouponRepo struct{ *fakeStore }

func (s *fakeStore) couponRepo() repo.CouponRepository { return &fakeCouponRepo{s} }

func (f *fakeCouponRepo) Create(ctx context.Context, c model.Coupon) (int64, error) {
	panic("not used in checkout tests")
}
func (f *fakeCouponRepo) FindByID(ctx context.Context, id int64) (model.Coupon, error) {
	panic("not used in checkout tests")
}
func (f *fakeCouponRepo) UpdateActive(ctx context.Context, id int64, active bool) (model.Coupon, error) {
	panic("not used in checkout tests")
}
func (f *fakeCouponRepo) Delete(ctx context.Context, id int64) error {
	panic("not used in checkout tests")
}
func (f *fakeCouponRepo) ListAll(ctx context.Context) ([]model.Coupon, error) {
	panic("not used in checkout tests")
}

// OrderRepository / OrderItemRepository

type fakeOrderRepo struct{ *fakeStore }

func (s *fakeStore) orderRepo() *fakeOrderRepo { return &fakeOrderRepo{s} }

func (f *fakeOrderRepo) Create(ctx context.Context, o model.Order) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.orders {
		if ex.TransactionID == o.TransactionID {
			return 0, repo.ErrDuplicate
		}
	}
	o.ID = f.nextID
	f.nextID++
	f.orders[o.ID] = o
	return o.ID, nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, q repo.OrderListFilter) ([]model.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if q.UserID != nil && o.UserID != *q.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	return nil
}

func (f *fakeOrderRepo) FindByTransactionID(ctx context.Context, transactionID string) (model.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TransactionID == transactionID {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

type fakeOrderItemRepo struct{ *fakeStore }

func (s *fakeStore) orderItemRepo() *fakeOrderItemRepo { return &fakeOrderItemRepo{s} }

func (f *fakeOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range items {
		items[i].OrderID = orderID
	}
	f.orderItems[orderID] = items
	return nil
}

func (f *fakeOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderItems[orderID], nil
}

// TransactionManager

type fakeTx struct{ *fakeStore }

func (s *fakeStore) txManager() repo.TransactionManager { return &fakeTx{s} }

func (t *fakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if t.txErr != nil {
		return t.txErr
	}
	return fn(t)
}

func (t *fakeTx) Orders() repo.OrderRepository         { return t.orderRepo() }
func (t *fakeTx) OrderItems() repo.OrderItemRepository { return t.orderItemRepo() }
func (t *fakeTx) Inventory() repo.InventoryRepository  { return t.fakeStore }
func (t *fakeTx) Products() repo.ProductRepository     { return t.fakeStore }
func (t *fakeTx) Coupons() repo.CouponRepository       { return t.couponRepo() }

// PaymentGateway

type fakeGateway struct {
	createErr error
	verifyErr error

	mu            sync.Mutex
	createdAmount int64
	verifiedIDs   []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (usecase.PaymentOrder, error) {
	if g.createErr != nil {
		return usecase.PaymentOrder{}, g.createErr
	}
	g.mu.Lock()
	g.createdAmount = amount
	g.mu.Unlock()
	return usecase.PaymentOrder{ID: "order_test", Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, transactionID string) error {
	if g.verifyErr != nil {
		return g.verifyErr
	}
	g.mu.Lock()
	g.verifiedIDs = append(g.verifiedIDs, transactionID)
	g.mu.Unlock()
	return nil
}

func newCheckoutUC(s *fakeStore, g *fakeGateway) *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(
		s.txManager(), s.orderRepo(), s.orderItemRepo(), s, s.couponRepo(), s, g, nil)
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), want),
			"error %q does not contain %q", err.Error(), want)
	}
}

// =====================
// Quote
// =====================

func TestCheckoutUsecase_Quote_Total(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 29900, Stock: 10})
	s.addProduct(model.Product{ID: 2, Name: "Mug", Price: 49900, Stock: 5})
	uc := newCheckoutUC(s, &fakeGateway{})

	out, err := uc.Quote(context.Background(), []usecase.CartItem{
		{ProductID: 1, Count: 2},
		{ProductID: 2, Count: 1},
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(2*29900+49900), out.Total)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "Coffee", out.Items[0].Name)
	assert.Equal(t, int64(29900), out.Items[0].UnitPrice)
}

func TestCheckoutUsecase_Quote_EmptyCart(t *testing.T) {
	uc := newCheckoutUC(newFakeStore(), &fakeGateway{})

	_, err := uc.Quote(context.Background(), nil, "")
	assertErrContains(t, err, "no products are found")
}

func TestCheckoutUsecase_Quote_ProductNotFound(t *testing.T) {
	uc := newCheckoutUC(newFakeStore(), &fakeGateway{})

	_, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 99, Count: 1}}, "")
	assertErrContains(t, err, "product does not found")
}

func TestCheckoutUsecase_Quote_InsufficientStock(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 1})
	uc := newCheckoutUC(s, &fakeGateway{})

	_, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 2}}, "")
	assertErrContains(t, err, "product quantity not in stock")
}

func TestCheckoutUsecase_Quote_CouponDiscount(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 999, Stock: 10})
	s.coupons["SAVE10"] = model.Coupon{ID: 1, Code: "SAVE10", Discount: 10, Active: true}
	uc := newCheckoutUC(s, &fakeGateway{})

	out, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 3}}, "SAVE10")
	assert.NoError(t, err)
	// 2997 の 10% 引きは 2697.3、最小通貨単位で四捨五入して 2697
	assert.Equal(t, int64(2697), out.Total)
	assert.Equal(t, "SAVE10", out.CouponCode)
}

func TestCheckoutUsecase_Quote_CouponFullDiscountClampsToZero(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	s.coupons["FREE"] = model.Coupon{ID: 1, Code: "FREE", Discount: 100, Active: true}
	uc := newCheckoutUC(s, &fakeGateway{})

	out, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 1}}, "FREE")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)
}

func TestCheckoutUsecase_Quote_CouponInactive(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	s.coupons["OLD"] = model.Coupon{ID: 1, Code: "OLD", Discount: 10, Active: false}
	uc := newCheckoutUC(s, &fakeGateway{})

	_, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 1}}, "OLD")
	assertErrContains(t, err, "coupon is not active")
}

func TestCheckoutUsecase_Quote_CouponNotFound(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	uc := newCheckoutUC(s, &fakeGateway{})

	_, err := uc.Quote(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 1}}, "NOPE")
	assertErrContains(t, err, "no coupon found")
}

// =====================
// GenerateGatewayOrder
// =====================

func TestCheckoutUsecase_GenerateGatewayOrder_Success(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 500, Stock: 10})
	g := &fakeGateway{}
	uc := newCheckoutUC(s, g)

	po, err := uc.GenerateGatewayOrder(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 2}}, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), po.Amount)
	assert.True(t, strings.HasPrefix(po.Receipt, "receipt_"))

	// 見積もりだけで在庫は減らない
	assert.Equal(t, int64(10), s.stockOf(1))
}

func TestCheckoutUsecase_GenerateGatewayOrder_GatewayDown(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 500, Stock: 10})
	g := &fakeGateway{createErr: usecase.ErrGatewayUnavailable}
	uc := newCheckoutUC(s, g)

	_, err := uc.GenerateGatewayOrder(context.Background(), []usecase.CartItem{{ProductID: 1, Count: 1}}, "")
	assertErrContains(t, err, "payment gateway unavailable")
	assert.Equal(t, int64(10), s.stockOf(1))
}

// =====================
// Checkout
// =====================

func validInput(txnID string) usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Items:         []usecase.CartItem{{ProductID: 1, Count: 2}},
		Address:       "1-2-3 Shibuya, Tokyo",
		PhoneNumber:   "09012345678",
		TransactionID: txnID,
	}
}

func TestCheckoutUsecase_Checkout_Success(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 29900, Stock: 10})
	g := &fakeGateway{}
	uc := newCheckoutUC(s, g)

	out, err := uc.Checkout(context.Background(), 7, validInput("pay_abc"))
	assert.NoError(t, err)

	assert.Equal(t, int64(7), out.UserID)
	assert.Equal(t, string(model.OrderStatusCreated), out.Status)
	assert.Equal(t, int64(59800), out.Amount)
	assert.Equal(t, "pay_abc", out.TransactionID)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "Coffee", out.Items[0].Name)
	assert.Equal(t, int64(29900), out.Items[0].Price)

	// 在庫が減り、決済が確認されている
	assert.Equal(t, int64(8), s.stockOf(1))
	assert.Equal(t, []string{"pay_abc"}, g.verifiedIDs)
}

func TestCheckoutUsecase_Checkout_MissingAddress(t *testing.T) {
	uc := newCheckoutUC(newFakeStore(), &fakeGateway{})

	in := validInput("pay_abc")
	in.Address = "  "
	_, err := uc.Checkout(context.Background(), 7, in)
	assertErrContains(t, err, "address is required")
}

func TestCheckoutUsecase_Checkout_PaymentInvalid_RestoresStock(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	g := &fakeGateway{verifyErr: usecase.ErrPaymentNotFound}
	uc := newCheckoutUC(s, g)

	_, err := uc.Checkout(context.Background(), 7, validInput("pay_bad"))
	assertErrContains(t, err, "invalid transaction id")

	// 予約が補償され、注文は残らない
	assert.Equal(t, int64(10), s.stockOf(1))
	assert.Empty(t, s.orders)
}

func TestCheckoutUsecase_Checkout_GatewayDown_RestoresStock(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	g := &fakeGateway{verifyErr: usecase.ErrGatewayUnavailable}
	uc := newCheckoutUC(s, g)

	_, err := uc.Checkout(context.Background(), 7, validInput("pay_x"))
	assertErrContains(t, err, "payment gateway unavailable")

	assert.Equal(t, int64(10), s.stockOf(1))
	assert.Empty(t, s.orders)
}

func TestCheckoutUsecase_Checkout_PersistFailure_RestoresStock(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	s.txErr = errors.New("db down")
	uc := newCheckoutUC(s, &fakeGateway{})

	_, err := uc.Checkout(context.Background(), 7, validInput("pay_y"))
	assertErrContains(t, err, "db error")

	assert.Equal(t, int64(10), s.stockOf(1))
	assert.Empty(t, s.orders)
}

func TestCheckoutUsecase_Checkout_PartialStock_NoPartialDecrement(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	s.addProduct(model.Product{ID: 2, Name: "Mug", Price: 200, Stock: 10})
	// 2件目の予約だけ落とす（見積もりは素通りする）
	s.failDecreaseFor[2] = true
	uc := newCheckoutUC(s, &fakeGateway{})

	in := validInput("pay_z")
	in.Items = []usecase.CartItem{
		{ProductID: 1, Count: 3},
		{ProductID: 2, Count: 1},
	}
	_, err := uc.Checkout(context.Background(), 7, in)
	assertErrContains(t, err, "product quantity not in stock")

	// 1件目の減算も巻き戻っている
	assert.Equal(t, int64(10), s.stockOf(1))
	assert.Equal(t, int64(10), s.stockOf(2))
}

func TestCheckoutUsecase_Checkout_SameTransactionID_ReturnsExistingOrder(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 10})
	uc := newCheckoutUC(s, &fakeGateway{})

	first, err := uc.Checkout(context.Background(), 7, validInput("pay_once"))
	assert.NoError(t, err)
	assert.Equal(t, int64(8), s.stockOf(1))

	// 同じ取引IDの再送。新しい注文も在庫の再減算も起きない
	second, err := uc.Checkout(context.Background(), 7, validInput("pay_once"))
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(8), s.stockOf(1))
	assert.Len(t, s.orders, 1)
}

func TestCheckoutUsecase_Checkout_ConcurrentOversellPrevented(t *testing.T) {
	s := newFakeStore()
	s.addProduct(model.Product{ID: 1, Name: "Coffee", Price: 100, Stock: 1})
	uc := newCheckoutUC(s, &fakeGateway{})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validInput("pay_conc_" + string(rune('a'+i)))
			in.Items = []usecase.CartItem{{ProductID: 1, Count: 1}}
			_, errs[i] = uc.Checkout(context.Background(), int64(i+1), in)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}

	// 在庫1なので勝者はちょうど1人。売り越しも負の在庫もない
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), s.stockOf(1))
	assert.Len(t, s.orders, 1)
}
