package model

// AuditEntry is one append-only record of an action taken on a document.
type AuditEntry struct {
	Actor       Person  `json:"actor"`
	ShareID     string  `json:"share_id"`
	StorageKey  string  `json:"storage_key"`
	DisplayName string  `json:"display_name"`
	Action      string  `json:"action"`
	ActionTime  float64 `json:"action_time"`
	DisplayTime string  `json:"display_time"`
}
