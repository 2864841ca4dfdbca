package constants

// Logical resource names. They are both the Pulumi resource names and the node ids of the
// deployment graph.
const (
	ResourceRunAPI             = "runApi"
	ResourceSQLAdminAPI        = "sqlAdminApi"
	ResourceSecretManagerAPI   = "secretManagerApi"
	ResourceResourceManagerAPI = "resourceManagerApi"
	ResourceServiceAccount     = "n8nServiceAccount"
	ResourceSQLClientRole      = "sqlClientRole"
	ResourceDBPassword         = "dbPassword"
	ResourceDBInstance         = "n8nDbInstance"
	ResourceDatabase           = "n8nDatabase"
	ResourceDBUser             = "n8nUser"
	ResourceEncryptionKey      = "n8nEncryptionKey"
	ResourceDBPasswordSecret   = "dbPasswordSecret"
	ResourceDBPasswordVersion  = "dbPasswordSecretVersion"
	ResourceDBPasswordAccessor = "dbPasswordSecretAccessor"
	ResourceEncKeySecret       = "encryptionKeySecret"
	ResourceEncKeyVersion      = "encryptionKeySecretVersion"
	ResourceEncKeyAccessor     = "encryptionKeySecretAccessor"
	ResourceProjectLookup      = "projectLookup"
	ResourceService            = "n8nService"
	ResourcePublicInvoker      = "n8nPublicInvoker"
)

// Pulumi type tokens of the declared resources and provider reads.
const (
	TypeProjectService    = "gcp:projects/service:Service"
	TypeProjectIAMMember  = "gcp:projects/iAMMember:IAMMember"
	TypeServiceAccount    = "gcp:serviceaccount/account:Account"
	TypeRandomPassword    = "random:index/randomPassword:RandomPassword"
	TypeDatabaseInstance  = "gcp:sql/databaseInstance:DatabaseInstance"
	TypeDatabase          = "gcp:sql/database:Database"
	TypeDatabaseUser      = "gcp:sql/user:User"
	TypeSecret            = "gcp:secretmanager/secret:Secret"
	TypeSecretVersion     = "gcp:secretmanager/secretVersion:SecretVersion"
	TypeSecretIAMMember   = "gcp:secretmanager/secretIamMember:SecretIamMember"
	TypeGetProject        = "gcp:organizations/getProject:getProject"
	TypeCloudRunService   = "gcp:cloudrunv2/service:Service"
	TypeCloudRunIAMMember = "gcp:cloudrunv2/serviceIamMember:ServiceIamMember"
)

// Stack output names.
const (
	OutputServiceURL          = "cloudRunServiceUrl"
	OutputConnectionName      = "cloudSqlConnectionName"
	OutputServiceAccountEmail = "n8nServiceAccountEmail"
	OutputServiceHost         = "serviceHost"
	OutputDerivedServiceURL   = "serviceUrl"
)
