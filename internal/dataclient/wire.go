package dataclient

import (
	"encoding/json"

	"github.com/grameenmart/storefront/pkg/enums"
)

// ProxyRequest is the single body shape accepted by the data proxy endpoint.
type ProxyRequest struct {
	Action  enums.DataAction `json:"action"`
	Table   string           `json:"table"`
	Payload json.RawMessage  `json:"payload,omitempty"`
	ID      *int64           `json:"id,omitempty"`
	Mobile  *string          `json:"mobile,omitempty"`
}

// ProxyResponse carries either a result or an error message.
type ProxyResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// UpdatePayload wraps the patch of an update action.
type UpdatePayload[P any] struct {
	Updates P `json:"updates"`
}
