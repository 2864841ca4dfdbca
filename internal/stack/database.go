package stack

import (
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/sql"
	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

// Keeper names of the database password. Changing either value regenerates the password.
const (
	keeperDBInstance = "dbInstance"
	keeperDBUser     = "dbUser"
)

// Database is the Cloud SQL instance with its logical database, user and password.
type Database struct {
	Password *random.RandomPassword
	Instance *sql.DatabaseInstance
	Database *sql.Database
	User     *sql.User
}

// ConnectionName is the provider-assigned "project:region:instance" identifier.
func (d *Database) ConnectionName() pulumi.StringOutput {
	return d.Instance.ConnectionName
}

// ProvisionDatabase declares the generated password, the instance, the database and the user.
// Tier and version are handed to the provider as configured.
func ProvisionDatabase(
	ctx *pulumi.Context,
	ledger *graph.Ledger,
	cfg *config.DeploymentConfig,
	sqlAdminAPI *projects.Service,
) (*Database, error) {
	instanceName := cfg.DBInstanceName()

	if err := ledger.Declare(constants.ResourceDBPassword); err != nil {
		return nil, err
	}
	password, err := random.NewRandomPassword(ctx, constants.ResourceDBPassword, &random.RandomPasswordArgs{
		Length:     pulumi.Int(constants.DBPasswordLength),
		Special:    pulumi.Bool(true),
		MinUpper:   pulumi.Int(1),
		MinLower:   pulumi.Int(1),
		MinNumeric: pulumi.Int(1),
		MinSpecial: pulumi.Int(1),
		Keepers: pulumi.StringMap{
			keeperDBInstance: pulumi.String(instanceName),
			keeperDBUser:     pulumi.String(cfg.DB.User),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(constants.ResourceDBInstance); err != nil {
		return nil, err
	}
	instance, err := sql.NewDatabaseInstance(ctx, constants.ResourceDBInstance, &sql.DatabaseInstanceArgs{
		Name:            pulumi.String(instanceName),
		Project:         pulumi.String(cfg.GCP.Project),
		Region:          pulumi.String(cfg.GCP.Region),
		DatabaseVersion: pulumi.String(cfg.DB.Version),
		Settings: &sql.DatabaseInstanceSettingsArgs{
			Tier:             pulumi.String(cfg.DB.Tier),
			AvailabilityType: pulumi.String(constants.DBAvailabilityType),
			DiskType:         pulumi.String(constants.DBDiskType),
			DiskSize:         pulumi.Int(cfg.DB.StorageSize),
			BackupConfiguration: &sql.DatabaseInstanceSettingsBackupConfigurationArgs{
				Enabled: pulumi.Bool(false),
			},
		},
		DeletionProtection: pulumi.Bool(false),
	}, pulumi.DependsOn([]pulumi.Resource{sqlAdminAPI}))
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(constants.ResourceDatabase); err != nil {
		return nil, err
	}
	database, err := sql.NewDatabase(ctx, constants.ResourceDatabase, &sql.DatabaseArgs{
		Name:     pulumi.String(cfg.DB.Name),
		Instance: instance.Name,
		Project:  pulumi.String(cfg.GCP.Project),
	})
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(constants.ResourceDBUser); err != nil {
		return nil, err
	}
	user, err := sql.NewUser(ctx, constants.ResourceDBUser, &sql.UserArgs{
		Name:     pulumi.String(cfg.DB.User),
		Instance: instance.Name,
		Password: password.Result,
		Project:  pulumi.String(cfg.GCP.Project),
	})
	if err != nil {
		return nil, err
	}

	return &Database{
		Password: password,
		Instance: instance,
		Database: database,
		User:     user,
	}, nil
}
