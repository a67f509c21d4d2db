package repository

import "errors"

// 見つからないときは各リポジトリでこれを返す
var ErrNotFound = errors.New("not found")

// 一意制約（email / coupon code / transaction id）に当たったとき
var ErrDuplicate = errors.New("duplicate")
