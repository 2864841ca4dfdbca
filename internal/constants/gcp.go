package constants

// Provider APIs enabled before any other resource is declared.
const (
	APIRun             = "run.googleapis.com"
	APISQLAdmin        = "sqladmin.googleapis.com"
	APISecretManager   = "secretmanager.googleapis.com"
	APIResourceManager = "cloudresourcemanager.googleapis.com"
)

// RequiredServices lists every API the deployment depends on.
var RequiredServices = []string{
	APIRun,
	APISQLAdmin,
	APISecretManager,
	APIResourceManager,
}

// IAM roles granted by the deployment.
const (
	RoleCloudSQLClient  = "roles/cloudsql.client"
	RoleSecretAccessor  = "roles/secretmanager.secretAccessor"
	RoleRunInvoker      = "roles/run.invoker"
	MemberAllUsers      = "allUsers"
	ServiceAccountScope = "serviceAccount:"
)

// Cloud SQL instance shape.
const (
	DBInstanceSuffix     = "-db"
	DBAvailabilityType   = "ZONAL"
	DBDiskType           = "PD_HDD"
	DBPasswordLength     = 16
	EncryptionKeyLength  = 32
	PostgresPort         = "5432"
	PostgresSchema       = "public"
	PostgresDriver       = "postgresdb"
	CloudSQLSocketPrefix = "/cloudsql/"
)

// Secret Manager ids are <serviceName> followed by these suffixes.
const (
	SecretSuffixDBPassword    = "-db-password"
	SecretSuffixEncryptionKey = "-encryption-key"
	SecretVersionLatest       = "latest"
)

// Cloud Run service shape.
const (
	ServiceImage          = "docker.io/n8nio/n8n:latest"
	ServiceIngress        = "INGRESS_TRAFFIC_ALL"
	ServiceTrafficLatest  = "TRAFFIC_TARGET_ALLOCATION_TYPE_LATEST"
	ServiceTrafficPercent = 100
	ServiceMinInstances   = 0
	ServiceHostSuffix     = "run.app"
	CloudSQLVolumeName    = "cloudsql"
	CloudSQLMountPath     = "/cloudsql"
	N8NUserFolder         = "/home/node/.n8n"
	ServiceAccountDisplay = "n8n Service Account for Cloud Run"
)

// Startup probe, tolerant of slow cold starts.
const (
	ProbeInitialDelaySeconds = 30
	ProbeTimeoutSeconds      = 240
	ProbePeriodSeconds       = 240
	ProbeFailureThreshold    = 3
)
