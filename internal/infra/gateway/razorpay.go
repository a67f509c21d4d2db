package gateway

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"app/internal/usecase"
)

// razorpay-goはcontextを受けないので、goroutineで包んで
// タイムアウトだけこちらで面倒を見る
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, secret)}
}

type orderResult struct {
	order map[string]interface{}
	err   error
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (usecase.PaymentOrder, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	ch := make(chan orderResult, 1)
	go func() {
		order, err := g.client.Order.Create(data, nil)
		ch <- orderResult{order: order, err: err}
	}()

	select {
	case <-ctx.Done():
		return usecase.PaymentOrder{}, usecase.ErrGatewayUnavailable
	case res := <-ch:
		if res.err != nil {
			return usecase.PaymentOrder{}, fmt.Errorf("razorpay create order: %w", usecase.ErrGatewayUnavailable)
		}
		id, _ := res.order["id"].(string)
		if id == "" {
			return usecase.PaymentOrder{}, usecase.ErrGatewayUnavailable
		}
		return usecase.PaymentOrder{
			ID:       id,
			Amount:   amount,
			Currency: currency,
			Receipt:  receipt,
		}, nil
	}
}

func (g *RazorpayGateway) VerifyPayment(ctx context.Context, transactionID string) error {
	ch := make(chan orderResult, 1)
	go func() {
		payment, err := g.client.Payment.Fetch(transactionID, nil, nil)
		ch <- orderResult{order: payment, err: err}
	}()

	select {
	case <-ctx.Done():
		return usecase.ErrGatewayUnavailable
	case res := <-ch:
		if res.err != nil {
			// SDKはステータスを返さないのでメッセージで切り分ける
			msg := strings.ToLower(res.err.Error())
			if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") || strings.Contains(msg, "invalid") {
				return usecase.ErrPaymentNotFound
			}
			return usecase.ErrGatewayUnavailable
		}
		if _, ok := res.order["id"].(string); !ok {
			return usecase.ErrPaymentNotFound
		}
		return nil
	}
}
