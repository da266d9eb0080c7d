package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ack is the fixed acknowledgment body for provider callbacks.
type Ack struct {
	Status bool `json:"status"`
}

// CallbackAck sends the acknowledgment the payment provider expects.
// Always 200 with {status:true}, regardless of what processing decided:
// a non-2xx response would make the provider retry cases this service
// intentionally ignores.
func CallbackAck(c *gin.Context) {
	c.JSON(http.StatusOK, Ack{Status: true})
}
