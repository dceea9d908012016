package domain

import "time"

// AuditAction identifies a security-relevant event in the auth flows.
type AuditAction string

const (
	AuditRegister     AuditAction = "register"
	AuditLoginSuccess AuditAction = "login_success"
	AuditLoginFailure AuditAction = "login_failure"
	AuditLockout      AuditAction = "lockout"
	AuditRefresh      AuditAction = "refresh"
	AuditLogout       AuditAction = "logout"
)

// AuditEvent is an append-only record of an auth-flow outcome. Events are
// written asynchronously; losing one is logged but never fails the request.
type AuditEvent struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	UserID    string      `json:"user_id,omitempty"`
	Email     string      `json:"email,omitempty"`
	ClientIP  string      `json:"client_ip,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
