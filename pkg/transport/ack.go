package transport

// Ack is the acknowledgement body the backend returns for calls that carry
// no resource, such as deletes and archive notifications.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
