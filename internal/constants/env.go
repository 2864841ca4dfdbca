package constants

// Environment variable names consumed by the n8n container image.
const (
	EnvN8NPort             = "N8N_PORT"
	EnvN8NProtocol         = "N8N_PROTOCOL"
	EnvDBType              = "DB_TYPE"
	EnvDBDatabase          = "DB_POSTGRESDB_DATABASE"
	EnvDBUser              = "DB_POSTGRESDB_USER"
	EnvDBHost              = "DB_POSTGRESDB_HOST"
	EnvDBPort              = "DB_POSTGRESDB_PORT"
	EnvDBSchema            = "DB_POSTGRESDB_SCHEMA"
	EnvN8NUserFolder       = "N8N_USER_FOLDER"
	EnvGenericTimezone     = "GENERIC_TIMEZONE"
	EnvQueueHealthCheck    = "QUEUE_HEALTH_CHECK_ACTIVE"
	EnvN8NRunnersEnabled   = "N8N_RUNNERS_ENABLED"
	EnvN8NProxyHops        = "N8N_PROXY_HOPS"
	EnvN8NHost             = "N8N_HOST"
	EnvWebhookURL          = "WEBHOOK_URL"
	EnvN8NEditorBaseURL    = "N8N_EDITOR_BASE_URL"
	EnvDBPassword          = "DB_POSTGRESDB_PASSWORD"
	EnvN8NEncryptionKey    = "N8N_ENCRYPTION_KEY"
	ServiceProtocol        = "https"
	ServiceProxyHops       = "1"
	ServiceFeatureEnabled  = "true"
	ServiceURLSchemePrefix = ServiceProtocol + "://"
)
