package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"app/internal/usecase"
)

type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// multipart/form-data。画像はphotosキーで複数受ける
func (h *ProductHandler) Create(c echo.Context) error {
	name := c.FormValue("name")
	description := c.FormValue("description")

	price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid price"})
	}
	stock, err := strconv.ParseInt(c.FormValue("stock"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid stock"})
	}
	collectionID, err := strconv.ParseInt(c.FormValue("collection_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid collection_id"})
	}

	var photos []usecase.PhotoUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["photos"] {
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid photo"})
			}
			defer f.Close()
			photos = append(photos, usecase.PhotoUpload{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			})
		}
	}

	product, err := h.uc.Create(c.Request().Context(), usecase.CreateProductInput{
		Name:         name,
		Description:  description,
		Price:        price,
		Stock:        stock,
		CollectionID: collectionID,
	}, photos)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "product created successfully", product)
}

func (h *ProductHandler) ListAll(c echo.Context) error {
	products, err := h.uc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "products fetched successfully", products)
}

func (h *ProductHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	product, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "product fetched successfully", product)
}

func (h *ProductHandler) ListByCollection(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	products, err := h.uc.ListByCollection(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "products fetched successfully", products)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ApiResponse{Success: false, Message: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "product deleted successfully", nil)
}
