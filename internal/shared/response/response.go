package response

import "github.com/gin-gonic/gin"

// Envelope is the uniform body for every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func SuccessWithMeta(c *gin.Context, status int, data, meta interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: meta})
}

func Error(c *gin.Context, status int, title, message string) {
	c.JSON(status, Envelope{Success: false, Error: &APIError{Title: title, Message: message}})
}

// ValidationError carries the per-field details produced by
// ozzo-validation's error map.
func ValidationError(c *gin.Context, status int, details interface{}) {
	c.JSON(status, Envelope{Success: false, Error: &APIError{
		Title:   "Validation Failed",
		Message: "one or more fields are invalid",
		Details: details,
	}})
}
