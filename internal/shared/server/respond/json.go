package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

func Accepted(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusAccepted, payload)
}
