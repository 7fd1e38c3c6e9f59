package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"grocery-backend/internal/shared/response"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type errorMapping struct {
	Status int
	Title  string
}

var errorMap = map[error]errorMapping{
	ErrUserNotFound:       {http.StatusNotFound, "User Not Found"},
	ErrEmailTaken:         {http.StatusConflict, "Email Conflict"},
	ErrInvalidCredentials: {http.StatusUnauthorized, "Unauthorized"},
}

func HandleUserError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, http.StatusBadRequest, verrs)
		return
	}

	for sentinel, m := range errorMap {
		if errors.Is(err, sentinel) {
			response.Error(c, m.Status, m.Title, err.Error())
			return
		}
	}

	response.Error(c, http.StatusInternalServerError, "Internal Server Error", "something went wrong")
}
