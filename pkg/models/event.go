package models

// Event operations published on the notifications channel.
const (
	OperationRequest = "REQUEST"
	OperationAccept  = "ACCEPT"
	OperationRemove  = "REMOVE"
	OperationShare   = "SHARE"
	OperationUnshare = "UNSHARE"
)

// Event is the payload published for every relationship change. UserID is the
// user the event is addressed to.
type Event struct {
	Operation string      `json:"operation"`
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Payload   interface{} `json:"payload"`
}

// MessageResponse is the body of mutating endpoints that return no record.
type MessageResponse struct {
	Message string `json:"message"`
}
