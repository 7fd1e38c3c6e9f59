package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/service"
	"grocery-backend/internal/shared/response"
)

type ProductHandler struct {
	service service.Service
}

func NewProductHandler(s service.Service) *ProductHandler {
	return &ProductHandler{service: s}
}

// imageFile pulls the optional multipart image field.
func imageFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	file, err := imageFile(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	product, err := h.service.Create(c.Request.Context(), &req, file)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	var req model.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	products, meta, err := h.service.List(c.Request.Context(), &req, c.Request.URL.RequestURI())
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, meta)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req model.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	file, err := imageFile(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	product, err := h.service.Update(c.Request.Context(), c.Param("key"), &req, file)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Hide(c *gin.Context) {
	product, err := h.service.Hide(c.Request.Context(), c.Param("key"))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Show(c *gin.Context) {
	product, err := h.service.Show(c.Request.Context(), c.Param("key"))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Remove(c *gin.Context) {
	product, err := h.service.Remove(c.Request.Context(), c.Param("key"))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) GetAllPrices(c *gin.Context) {
	prices, err := h.service.GetAllPrices(c.Request.Context(), c.Param("key"))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, prices)
}

func (h *ProductHandler) CheckName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, http.StatusBadRequest, "Bad Request", "name query parameter is required")
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Bad Request", "exclude_id must be a uuid")
			return
		}
		excludeID = &id
	}

	exists, err := h.service.IsExistName(c.Request.Context(), name, excludeID)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exists": exists})
}

func (h *ProductHandler) Export(c *gin.Context) {
	var req model.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	file, err := h.service.ExportToExcel(c.Request.Context(), &req)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		model.HandleProductError(c, err)
	}
}
