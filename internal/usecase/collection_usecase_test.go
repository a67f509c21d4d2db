package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

func TestCollectionUsecase_Create_EmptyName(t *testing.T) {
	uc := usecase.NewCollectionUsecase(new(CollectionRepoMock))

	_, err := uc.Create(context.Background(), "   ")
	assertErrContains(t, err, "name is required")
}

func TestCollectionUsecase_Create_NameTooLong(t *testing.T) {
	uc := usecase.NewCollectionUsecase(new(CollectionRepoMock))

	_, err := uc.Create(context.Background(), strings.Repeat("x", 121))
	assertErrContains(t, err, "name")
}

func TestCollectionUsecase_Create_Success(t *testing.T) {
	cRepo := new(CollectionRepoMock)
	uc := usecase.NewCollectionUsecase(cRepo)

	cRepo.On("Create", mock.Anything, mock.MatchedBy(func(c model.Collection) bool {
		return c.Name == "Drinks"
	})).Return(int64(3), nil)
	cRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Collection{ID: 3, Name: "Drinks"}, nil)

	c, err := uc.Create(context.Background(), " Drinks ")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)

	cRepo.AssertExpectations(t)
}

func TestCollectionUsecase_Update_NotFound(t *testing.T) {
	cRepo := new(CollectionRepoMock)
	uc := usecase.NewCollectionUsecase(cRepo)

	cRepo.On("UpdateName", mock.Anything, int64(9), "Drinks").Return(repo.ErrNotFound)

	_, err := uc.Update(context.Background(), 9, "Drinks")
	assertErrContains(t, err, "collection not found")
}

func TestCollectionUsecase_Delete_NotFound(t *testing.T) {
	cRepo := new(CollectionRepoMock)
	uc := usecase.NewCollectionUsecase(cRepo)

	cRepo.On("Delete", mock.Anything, int64(9)).Return(repo.ErrNotFound)

	err := uc.Delete(context.Background(), 9)
	assertErrContains(t, err, "collection not found")
}
