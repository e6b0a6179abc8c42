package model

const (
	AuditActionSync      = "sync"
	AuditActionUpdate    = "update"
	AuditActionDelete    = "delete"
	AuditActionTranslate = "translate"

	AuditStatusPending = "pending"
	AuditStatusSuccess = "success"
	AuditStatusError   = "error"
)

// AuditLogEntry is append-only: request paths insert, never update or
// delete. Only the retention job prunes old rows.
type AuditLogEntry struct {
	ID            int64  `json:"id"`
	HostPostID    int64  `json:"host_post_id"`
	TargetPostID  *int64 `json:"target_post_id,omitempty"`
	SourceSiteURL string `json:"source_site_url"`
	TargetSiteURL string `json:"target_site_url"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	UserRole      string `json:"user_role"`
	DurationMS    int64  `json:"duration_ms"`
	CreatedAt     int64  `json:"created_at"`
}
