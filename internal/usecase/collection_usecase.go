package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CollectionUsecase struct {
	collections repo.CollectionRepository
}

func NewCollectionUsecase(collections repo.CollectionRepository) *CollectionUsecase {
	return &CollectionUsecase{collections: collections}
}

func validateCollectionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewHTTPError(http.StatusBadRequest, "collection name is required")
	}
	if len(name) > 120 {
		return "", NewHTTPError(http.StatusBadRequest, "collection name must be less than 120 chars")
	}
	return name, nil
}

func (u *CollectionUsecase) Create(ctx context.Context, name string) (model.Collection, error) {
	name, err := validateCollectionName(name)
	if err != nil {
		return model.Collection{}, err
	}

	now := time.Now()
	id, err := u.collections.Create(ctx, model.Collection{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Collection{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.collections.FindByID(ctx, id)
}

func (u *CollectionUsecase) Update(ctx context.Context, collectionID int64, name string) (model.Collection, error) {
	if collectionID <= 0 {
		return model.Collection{}, NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}
	name, err := validateCollectionName(name)
	if err != nil {
		return model.Collection{}, err
	}

	if err := u.collections.UpdateName(ctx, collectionID, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Collection{}, NewHTTPError(http.StatusNotFound, "collection not found")
		}
		return model.Collection{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.collections.FindByID(ctx, collectionID)
}

func (u *CollectionUsecase) Delete(ctx context.Context, collectionID int64) error {
	if collectionID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}

	if err := u.collections.Delete(ctx, collectionID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "collection not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CollectionUsecase) ListAll(ctx context.Context) ([]model.Collection, error) {
	collections, err := u.collections.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return collections, nil
}
