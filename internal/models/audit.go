package models

import "time"

// Audit action identifiers. The audit trail is best-effort: failures are
// logged, never surfaced to the caller.
const (
	AuditActionLogin           = "auth.login"
	AuditActionSignup          = "auth.signup"
	AuditActionRegisterTeacher = "auth.register_teacher"
	AuditActionVerifyEmail     = "auth.verify_email"
	AuditActionResendOTP       = "auth.resend_verification"
	AuditActionManageContent   = "admin.manage_content"
	AuditActionManageTeacher   = "admin.manage_teacher"
	AuditActionProfileUpdate   = "user.profile_update"
	AuditActionImageUpload     = "user.image_upload"
)

// AuditLog records an administrative or authentication action.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
