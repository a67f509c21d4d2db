package model

import "time"

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 価格は最小通貨単位（パイサ）の整数で持つ
	Price        int64          `gorm:"not null" json:"price"`
	Stock        int64          `gorm:"not null" json:"stock"`
	CollectionID int64          `gorm:"index" json:"collection_id"`
	Photos       []ProductPhoto `gorm:"foreignKey:ProductID" json:"photos"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type ProductPhoto struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	SecureURL string `gorm:"type:varchar(512);not null" json:"secure_url"`
	// S3側の削除に使うキー
	ObjectKey string `gorm:"type:varchar(512);not null" json:"-"`
}
