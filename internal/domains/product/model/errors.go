package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"grocery-backend/internal/shared/response"
	"grocery-backend/pkg/database"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNameTaken     = errors.New("product name or slug already taken")
	ErrPriceHistoryNotFound = errors.New("price history not found")
	ErrImageNotFound        = errors.New("product image not found")
	ErrInvalidImage         = errors.New("invalid image file")
	ErrUploadFailed         = errors.New("image upload failed")
)

type errorMapping struct {
	Status int
	Title  string
}

var errorMap = map[error]errorMapping{
	ErrProductNotFound:       {http.StatusNotFound, "Product Not Found"},
	ErrProductNameTaken:      {http.StatusConflict, "Product Conflict"},
	ErrPriceHistoryNotFound:  {http.StatusNotFound, "Price History Not Found"},
	ErrImageNotFound:         {http.StatusNotFound, "Image Not Found"},
	ErrInvalidImage:          {http.StatusBadRequest, "Invalid Image"},
	ErrUploadFailed:          {http.StatusBadGateway, "Upload Failed"},
	database.ErrCommitFailed: {http.StatusInternalServerError, "Transaction Failed"},
}

// HandleProductError maps domain errors onto the response envelope.
// Validation errors carry their field details; anything unmapped is a 500.
func HandleProductError(c *gin.Context, err error) {
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
