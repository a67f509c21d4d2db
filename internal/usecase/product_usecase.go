package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 商品画像の置き場所（S3など）の約束
type FileStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// 読み取り側のキャッシュの約束。missはfalseで返す
type ProductCache interface {
	GetProduct(ctx context.Context, productID int64) (model.Product, bool)
	SetProduct(ctx context.Context, product model.Product)
	GetAll(ctx context.Context) ([]model.Product, bool)
	SetAll(ctx context.Context, products []model.Product)
	Invalidate(ctx context.Context, productID int64)
	InvalidateAll(ctx context.Context)
}

type PhotoUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type ProductUsecase struct {
	products    repo.ProductRepository
	collections repo.CollectionRepository
	storage     FileStorage  // nilなら画像なしで作る
	cache       ProductCache // nilならキャッシュなし
}

func NewProductUsecase(
	products repo.ProductRepository,
	collections repo.CollectionRepository,
	storage FileStorage,
	cache ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		products:    products,
		collections: collections,
		storage:     storage,
		cache:       cache,
	}
}

type CreateProductInput struct {
	Name         string
	Description  string
	Price        int64
	Stock        int64
	CollectionID int64
}

// 商品作成（ADMIN/MODERATOR）。画像は products/<id>/photo_N の形でアップロードする
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput, photos []PhotoUpload) (model.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.CollectionID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "collection id is required")
	}

	// コレクションの存在確認
	if _, err := u.collections.FindByID(ctx, in.CollectionID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "collection not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	productID, err := u.products.Create(ctx, model.Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		Stock:        in.Stock,
		CollectionID: in.CollectionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 画像はIDが決まってからアップロードする
	if u.storage != nil && len(photos) > 0 {
		rows := make([]model.ProductPhoto, 0, len(photos))
		for i, ph := range photos {
			key := fmt.Sprintf("products/%d/photo_%d.png", productID, i+1)
			url, err := u.storage.Upload(ctx, key, ph.Body, ph.ContentType)
			if err != nil {
				return model.Product{}, NewHTTPError(http.StatusInternalServerError, "image upload failed")
			}
			rows = append(rows, model.ProductPhoto{
				ProductID: productID,
				SecureURL: url,
				ObjectKey: key,
			})
		}
		if err := u.products.AddPhotos(ctx, productID, rows); err != nil {
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if u.cache != nil {
		u.cache.InvalidateAll(ctx)
	}

	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if u.cache != nil {
		if p, ok := u.cache.GetProduct(ctx, productID); ok {
			return p, nil
		}
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "no product found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.SetProduct(ctx, p)
	}
	return p, nil
}

func (u *ProductUsecase) ListAll(ctx context.Context) ([]model.Product, error) {
	if u.cache != nil {
		if ps, ok := u.cache.GetAll(ctx); ok {
			return ps, nil
		}
	}

	products, err := u.products.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.SetAll(ctx, products)
	}
	return products, nil
}

func (u *ProductUsecase) ListByCollection(ctx context.Context, collectionID int64) ([]model.Product, error) {
	if collectionID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}

	products, err := u.products.ListByCollectionID(ctx, collectionID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// 削除（ADMIN/MODERATOR）。S3の画像→DBの順に消す
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "no product found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.storage != nil {
		for _, ph := range p.Photos {
			if err := u.storage.Delete(ctx, ph.ObjectKey); err != nil {
				// 画像が消えなくてもDB側の削除は続行する
				log.Printf("photo delete failed: key=%s err=%v", ph.ObjectKey, err)
			}
		}
	}

	if err := u.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "no product found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx, productID)
		u.cache.InvalidateAll(ctx)
	}
	return nil
}
