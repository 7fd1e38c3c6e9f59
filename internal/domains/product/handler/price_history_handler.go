package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/service"
	"grocery-backend/internal/shared/response"
)

type PriceHistoryHandler struct {
	service service.PriceHistoryService
}

func NewPriceHistoryHandler(s service.PriceHistoryService) *PriceHistoryHandler {
	return &PriceHistoryHandler{service: s}
}

func (h *PriceHistoryHandler) Create(c *gin.Context) {
	var req model.CreatePriceHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	entry, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

func (h *PriceHistoryHandler) List(c *gin.Context) {
	entries, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

func (h *PriceHistoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", "id must be a uuid")
		return
	}

	entry, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entry)
}

func (h *PriceHistoryHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", "productId must be a uuid")
		return
	}

	entries, err := h.service.FindAllByProduct(c.Request.Context(), productID)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}
