package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/user/model"
	"grocery-backend/internal/domains/user/service"
	"grocery-backend/internal/shared"
	"grocery-backend/internal/shared/response"
)

type UserHandler struct {
	service service.Service
}

func NewUserHandler(s service.Service) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	u, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	u, tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u, "tokens": tokens})
}

// Me returns the profile of the authenticated caller.
func (h *UserHandler) Me(c *gin.Context) {
	id, err := uuid.Parse(c.GetString(shared.ContextUserID))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", "invalid token subject")
		return
	}

	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) List(c *gin.Context) {
	var req model.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	users, meta, err := h.service.List(c.Request.Context(), &req, c.Request.URL.RequestURI())
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, meta)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", "id must be a uuid")
		return
	}

	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", "id must be a uuid")
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	u, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Bad Request", "id must be a uuid")
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusNoContent, nil)
}
