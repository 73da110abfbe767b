package metrics

const Namespace = "techrobotics_site"

const (
	StoreTypeRedis  = "redis"
	StoreTypeMemory = "memory"
	StoreTypeSQLite = "sqlite"
)

const (
	PresenceOperationMarkActive   = "mark_active"
	PresenceOperationMarkInactive = "mark_inactive"
	PresenceOperationList         = "list"
	PresenceOperationCount        = "count"
	PresenceOperationSweep        = "sweep"
)

const (
	BackoffOutcomeSuccess   = "success"
	BackoffOutcomeRetry     = "retry"
	BackoffOutcomeFailed    = "failed"
	BackoffOutcomeExhausted = "exhausted"
)
