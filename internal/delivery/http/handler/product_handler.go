package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/delivery/http/middleware"
	"catalog-system/internal/service"
	"catalog-system/internal/usecase"
	"catalog-system/pkg/response"
	"catalog-system/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const notificationWarning = "change saved but notification email could not be sent"

type ProductHandler struct {
	log            *logrus.Logger
	productUsecase usecase.ProductUsecase
}

func NewProductHandler(log *logrus.Logger, productUsecase usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{
		log:            log,
		productUsecase: productUsecase,
	}
}

// GetAll handles listing every product
// @Summary List products
// @Tags Products
// @Produce json
// @Success 200 {object} response.Response
// @Router /products/ [get]
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.productUsecase.GetAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get products")
		return
	}

	response.Success(w, http.StatusOK, "Products retrieved successfully", products)
}

// GetBySKU handles getting one product; every hit counts as a view
// @Summary Get product by SKU
// @Tags Products
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{sku} [get]
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	sku, ok := parseSKU(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	product, err := h.productUsecase.GetBySKU(r.Context(), sku)
	if err != nil {
		h.writeError(w, err, "Failed to get product")
		return
	}

	response.Success(w, http.StatusOK, "Product retrieved successfully", product)
}

// Create handles product creation
// @Summary Create a new product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "Create Product Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /products/create [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	product, err := h.productUsecase.Create(r.Context(), middleware.GetActorFromContext(r.Context()), &req)
	if err != nil && !h.notificationOnly(w, err) {
		h.writeError(w, err, "Failed to create product")
		return
	}

	response.Success(w, http.StatusCreated, "Product created successfully", product)
}

// Update handles full replacement of a product
// @Summary Update product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sku path string true "Product SKU"
// @Param request body dto.UpdateProductRequest true "Update Product Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/update/{sku} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	sku, ok := parseSKU(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	// A body that does not decode is reported by the usecase after the
	// product lookup, so an unknown sku stays a 404.
	var req *dto.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = nil
	}

	product, err := h.productUsecase.Update(r.Context(), middleware.GetActorFromContext(r.Context()), sku, req)
	if err != nil && !h.notificationOnly(w, err) {
		h.writeError(w, err, "Failed to update product")
		return
	}

	response.Success(w, http.StatusOK, "Product updated successfully", product)
}

// Delete handles product deletion
// @Summary Delete product
// @Tags Products
// @Security BearerAuth
// @Param sku path string true "Product SKU"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/delete/{sku} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sku, ok := parseSKU(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	err := h.productUsecase.Delete(r.Context(), middleware.GetActorFromContext(r.Context()), sku)
	if err != nil && !h.notificationOnly(w, err) {
		h.writeError(w, err, "Failed to delete product")
		return
	}

	response.NoContent(w)
}

// notificationOnly reports whether err is just a failed notification for a
// mutation that was committed. In that case the warning is attached to the
// response and the caller still answers with success.
func (h *ProductHandler) notificationOnly(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, service.ErrNotificationFailed) {
		return false
	}
	h.log.Errorf("Product change notification failed: %+v", err)
	response.Warn(w, notificationWarning)
	return true
}

func (h *ProductHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *validator.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, usecase.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, usecase.ErrInvalidPayload):
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
	default:
		h.log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}

// parseSKU reads the sku path variable. A value that is not a UUID cannot
// name any product.
func parseSKU(r *http.Request) (uuid.UUID, bool) {
	sku, err := uuid.Parse(mux.Vars(r)["sku"])
	if err != nil {
		return uuid.Nil, false
	}
	return sku, true
}
