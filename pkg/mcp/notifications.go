package mcp

import "encoding/json"

// NotificationKind is the closed set of client-originated notification
// methods this runtime recognizes.
type NotificationKind string

const (
	NotifyInitialized     NotificationKind = "notifications/initialized"
	NotifyCancelled       NotificationKind = "notifications/cancelled"
	NotifyProgress        NotificationKind = "notifications/progress"
	NotifyRootsChanged    NotificationKind = "notifications/roots/list_changed"
)

// AllNotificationKinds enumerates every recognized ClientNotification
// method name.
var AllNotificationKinds = []NotificationKind{
	NotifyInitialized, NotifyCancelled, NotifyProgress, NotifyRootsChanged,
}

// ClientNotification is a parsed notification: a Kind plus raw params. A
// notification never has a response; handlers process it best-effort.
type ClientNotification struct {
	Kind   NotificationKind
	Params json.RawMessage
}

// CancelledParams is the typed shape of a "notifications/cancelled"
// notification.
type CancelledParams struct {
	RequestID RequestID `json:"requestId"`
	Reason    string    `json:"reason,omitempty"`
}

// DecodeCancelledParams decodes n.Params as CancelledParams.
func DecodeCancelledParams(n ClientNotification) (CancelledParams, error) {
	var p CancelledParams
	err := json.Unmarshal(n.Params, &p)
	return p, err
}

// ProgressParams is the typed shape of a "notifications/progress"
// notification.
type ProgressParams struct {
	ProgressToken json.RawMessage `json:"progressToken"`
	Progress      float64         `json:"progress"`
	Total         *float64        `json:"total,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// DecodeProgressParams decodes n.Params as ProgressParams.
func DecodeProgressParams(n ClientNotification) (ProgressParams, error) {
	var p ProgressParams
	err := json.Unmarshal(n.Params, &p)
	return p, err
}
