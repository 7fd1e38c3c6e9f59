package shared

// Task type names shared between the API (enqueue side) and the worker.
const (
	TypeEmailWelcome   = "email:welcome"
	TypeAssetCleanup   = "asset:cleanup"
	TypeDatabaseBackup = "db:backup"
)

// Queue names, highest priority first.
const (
	QueueCritical    = "critical"
	QueueEmail       = "email"
	QueueMaintenance = "maintenance"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AssetCleanupPayload struct {
	PublicID string `json:"public_id"`
	Reason   string `json:"reason"`
}

type DatabaseBackupPayload struct{}
