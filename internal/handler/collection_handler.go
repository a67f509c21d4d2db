package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/usecase"
)

type CollectionHandler struct {
	uc *usecase.CollectionUsecase
}

func NewCollectionHandler(uc *usecase.CollectionUsecase) *CollectionHandler {
	return &CollectionHandler{uc: uc}
}

type CollectionRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (h *CollectionHandler) Create(c echo.Context) error {
	var req CollectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	collection, err := h.uc.Create(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "collection created successfully", collection)
}

func (h *CollectionHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	var req CollectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	collection, err := h.uc.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "collection updated successfully", collection)
}

func (h *CollectionHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "collection deleted successfully", nil)
}

func (h *CollectionHandler) ListAll(c echo.Context) error {
	collections, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "collections fetched successfully", collections)
}
