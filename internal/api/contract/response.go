package contract

// Response is the machine-facing acknowledgment for callback and status
// requests.
type Response struct {
	OK     bool   `json:"ok"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}

type ValidationResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
