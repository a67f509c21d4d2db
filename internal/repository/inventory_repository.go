package repository

import "context"

type InventoryRepository interface {
	// 在庫が足りるときだけ減算する。条件付きUPDATE一発で行い、
	// read-modify-write の競合（売り越し）を作らない
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（予約の補償・キャンセル）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
