package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"vmp-callback/internal/response"
	"vmp-callback/internal/services"
	"vmp-callback/pkg/logging"

	"github.com/gin-gonic/gin"
)

// CallbackHandler receives payment provider callbacks and hands them to
// the processor.
type CallbackHandler struct {
	processor *services.CallbackProcessor
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(processor *services.CallbackProcessor) *CallbackHandler {
	return &CallbackHandler{processor: processor}
}

// HandlePaymentCallback handles the provider's payment notification.
// POST /violet-callback
// Whatever happens, the provider gets 200 {status:true}; everything
// else is the processor's problem and shows up in the logs.
func (h *CallbackHandler) HandlePaymentCallback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read callback body: %v", err)
		response.CallbackAck(c)
		return
	}

	in := services.InboundCallback{
		ClientIP: resolveClientIP(c.Request),
		Fields:   parseCallbackFields(body, c.ContentType()),
		Header:   c.Request.Header,
		RawBody:  body,
	}

	outcome := h.processor.Process(c.Request.Context(), in)
	logging.Infof("Callback handled - ip: %s, outcome: %s", in.ClientIP, outcome)

	response.CallbackAck(c)
}

// parseCallbackFields flattens a form- or JSON-encoded callback body
// into a string map. The provider has sent both encodings over time.
// Unparseable bodies yield an empty map, which the processor treats as
// incomplete.
func parseCallbackFields(body []byte, contentType string) map[string]string {
	fields := make(map[string]string)

	trimmed := strings.TrimSpace(string(body))
	if strings.Contains(contentType, "json") || strings.HasPrefix(trimmed, "{") {
		var raw map[string]interface{}
		if err := json.Unmarshal(body, &raw); err != nil {
			logging.Errorf("Failed to parse callback JSON body: %v", err)
			return fields
		}
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				fields[key] = v
			case float64:
				fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				fields[key] = strconv.FormatBool(v)
			case nil:
				// skip
			default:
				fields[key] = fmt.Sprint(v)
			}
		}
		return fields
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		logging.Errorf("Failed to parse callback form body: %v", err)
		return fields
	}
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields
}

// resolveClientIP prefers the first entry of X-Forwarded-For and falls
// back to the transport peer address.
func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
