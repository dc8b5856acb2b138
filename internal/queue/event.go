package queue

// Event types published to the auth.events queue.
const (
    EventUserCreated = "user.created"
    EventRoleGranted = "role.granted"
)

// AuthEvent is the audit record emitted when an account is created or a
// role is granted. The consumer appends these to logs/auth.log; other
// services may attach their own consumers to the same queue.
type AuthEvent struct {
    Type       string `json:"type"`
    UserID     uint64 `json:"user_id"`
    Username   string `json:"username,omitempty"`
    RoleID     uint64 `json:"role_id,omitempty"`
    OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}
