package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"app/internal/domain/model"
)

func TestParseOrderStatus(t *testing.T) {
	s, ok := model.ParseOrderStatus("PAID")
	assert.True(t, ok)
	assert.Equal(t, model.OrderStatusPaid, s)

	_, ok = model.ParseOrderStatus("paid")
	assert.False(t, ok)

	_, ok = model.ParseOrderStatus("FLYING")
	assert.False(t, ok)
}

func TestOrderStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   model.OrderStatus
		want bool
	}{
		{model.OrderStatusCreated, model.OrderStatusPaid, true},
		{model.OrderStatusCreated, model.OrderStatusCanceled, true},
		{model.OrderStatusCreated, model.OrderStatusShipped, false},
		{model.OrderStatusCreated, model.OrderStatusDelivered, false},
		{model.OrderStatusPaid, model.OrderStatusShipped, true},
		{model.OrderStatusPaid, model.OrderStatusCanceled, true},
		{model.OrderStatusPaid, model.OrderStatusDelivered, false},
		{model.OrderStatusShipped, model.OrderStatusDelivered, true},
		{model.OrderStatusShipped, model.OrderStatusCanceled, false},
		{model.OrderStatusDelivered, model.OrderStatusCanceled, false},
		{model.OrderStatusCanceled, model.OrderStatusDelivered, false},
		{model.OrderStatusCanceled, model.OrderStatusPaid, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.from.CanTransition(c.to),
			"%s -> %s", c.from, c.to)
	}
}
