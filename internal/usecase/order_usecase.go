package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	Status        string            `json:"status"`
	Amount        int64             `json:"amount"`
	Address       string            `json:"address"`
	PhoneNumber   string            `json:"phone_number"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	TransactionID string            `json:"transaction_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	auditRepo repo.AuditLogRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, items: items, auditRepo: auditRepo}
}

// 自分の注文一覧（作成日時の降順）
func (u *OrderUsecase) MyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.items.ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

type AllOrdersInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 管理者用の全注文一覧
func (u *OrderUsecase) AllOrders(ctx context.Context, in AllOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" {
		if _, ok := model.ParseOrderStatus(in.Status); !ok {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	orders, total, err := u.orders.ListAll(ctx, repo.OrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.items.ListByOrderID(ctx, o.ID)
		if err != nil {
			return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}

	return OrderListOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

type UpdateOrderStatusInput struct {
	OrderID   int64
	NewStatus string
}

// ステータス更新。未知のステータスと許可外の遷移は拒否する。
// 一般ユーザーは自分の注文のキャンセルだけ、ADMIN/MODERATORは任意の合法遷移が可能。
// CANCELEDに落ちるときは同じトランザクションで在庫を戻す
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorID int64, actorRole model.Role, in UpdateOrderStatusInput) (OrderOutput, error) {
	if actorID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.OrderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.NewStatus))
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, in.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		privileged := actorRole == model.RoleAdmin || actorRole == model.RoleModerator
		if !privileged {
			// 本人によるキャンセルだけ許す
			if o.UserID != actorID {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			if newStatus != model.OrderStatusCanceled {
				return NewHTTPError(http.StatusForbidden, "you are not authorize to access this resource")
			}
		}

		if !o.Status.CanTransition(newStatus) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("invalid transition: %s -> %s", o.Status, newStatus))
		}

		// キャンセル時は明細分の在庫を戻す
		if newStatus == model.OrderStatusCanceled {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, newStatus); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（誰がどの注文をどう変えたか）
		beforeJSON := fmt.Sprintf(`{"status":%q}`, o.Status)
		afterJSON := fmt.Sprintf(`{"status":%q}`, newStatus)
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = newStatus
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Amount:        o.Amount,
		Address:       o.Address,
		PhoneNumber:   o.PhoneNumber,
		CouponCode:    o.CouponCode,
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
