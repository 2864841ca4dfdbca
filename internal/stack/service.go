package stack

import (
	"strconv"

	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/cloudrunv2"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/organizations"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

// ServiceArgs gathers everything the Cloud Run service consumes.
type ServiceArgs struct {
	Config   *config.DeploymentConfig
	APIs     *APIs
	Identity *Identity
	Database *Database
	Secrets  *Secrets
}

// Service is the deployed n8n service and its derived public address.
type Service struct {
	Service *cloudrunv2.Service
	// PublicInvoker is nil unless unauthenticated access is enabled.
	PublicInvoker *cloudrunv2.ServiceIamMember
	ServiceHost   pulumi.StringOutput
	ServiceURL    pulumi.StringOutput
}

// ServiceHost formats the deterministic run.app host of a service.
func ServiceHost(serviceName, projectNumber, region string) string {
	return serviceName + "-" + projectNumber + "." + region + "." + constants.ServiceHostSuffix
}

// DeployService declares the Cloud Run service and, when enabled, its public invoker grant.
func DeployService(ctx *pulumi.Context, ledger *graph.Ledger, args ServiceArgs) (*Service, error) {
	cfg := args.Config

	if err := ledger.Declare(constants.ResourceProjectLookup); err != nil {
		return nil, err
	}
	project := organizations.LookupProjectOutput(ctx, organizations.LookupProjectOutputArgs{
		ProjectId: pulumi.StringPtr(cfg.GCP.Project),
	}, pulumi.DependsOn([]pulumi.Resource{args.APIs.ResourceManager}))

	serviceHost := project.Number().ApplyT(func(number string) string {
		return ServiceHost(cfg.CloudRun.ServiceName, number, cfg.GCP.Region)
	}).(pulumi.StringOutput)
	serviceURL := pulumi.Sprintf("%s%s", constants.ServiceURLSchemePrefix, serviceHost)

	dependsOn := append([]pulumi.Resource{}, args.APIs.All()...)
	dependsOn = append(dependsOn,
		args.Identity.Account,
		args.Identity.SQLClientRole,
		args.Database.Instance,
		args.Database.Database,
		args.Database.User,
	)
	dependsOn = append(dependsOn, args.Secrets.Versions()...)
	dependsOn = append(dependsOn, args.Secrets.Accessors()...)

	if err := ledger.Declare(constants.ResourceService); err != nil {
		return nil, err
	}
	port := cfg.CloudRun.ContainerPort
	service, err := cloudrunv2.NewService(ctx, constants.ResourceService, &cloudrunv2.ServiceArgs{
		Name:               pulumi.String(cfg.CloudRun.ServiceName),
		Project:            pulumi.String(cfg.GCP.Project),
		Location:           pulumi.String(cfg.GCP.Region),
		Ingress:            pulumi.String(constants.ServiceIngress),
		DeletionProtection: pulumi.Bool(false),
		Template: &cloudrunv2.ServiceTemplateArgs{
			ServiceAccount: args.Identity.Account.Email,
			Scaling: &cloudrunv2.ServiceTemplateScalingArgs{
				MaxInstanceCount: pulumi.Int(cfg.CloudRun.MaxInstances),
				MinInstanceCount: pulumi.Int(constants.ServiceMinInstances),
			},
			Volumes: cloudrunv2.ServiceTemplateVolumeArray{
				&cloudrunv2.ServiceTemplateVolumeArgs{
					Name: pulumi.String(constants.CloudSQLVolumeName),
					CloudSqlInstance: &cloudrunv2.ServiceTemplateVolumeCloudSqlInstanceArgs{
						Instances: pulumi.StringArray{args.Database.ConnectionName()},
					},
				},
			},
			Containers: cloudrunv2.ServiceTemplateContainerArray{
				&cloudrunv2.ServiceTemplateContainerArgs{
					Image: pulumi.String(constants.ServiceImage),
					VolumeMounts: cloudrunv2.ServiceTemplateContainerVolumeMountArray{
						&cloudrunv2.ServiceTemplateContainerVolumeMountArgs{
							Name:      pulumi.String(constants.CloudSQLVolumeName),
							MountPath: pulumi.String(constants.CloudSQLMountPath),
						},
					},
					Ports: &cloudrunv2.ServiceTemplateContainerPortsArgs{
						ContainerPort: pulumi.Int(port),
					},
					Resources: &cloudrunv2.ServiceTemplateContainerResourcesArgs{
						Limits: pulumi.StringMap{
							"cpu":    pulumi.String(cfg.CloudRun.CPU),
							"memory": pulumi.String(cfg.CloudRun.Memory),
						},
						StartupCpuBoost: pulumi.Bool(true),
						CpuIdle:         pulumi.Bool(false),
					},
					Envs: containerEnv(cfg, args, serviceHost, serviceURL),
					StartupProbe: &cloudrunv2.ServiceTemplateContainerStartupProbeArgs{
						InitialDelaySeconds: pulumi.Int(constants.ProbeInitialDelaySeconds),
						TimeoutSeconds:      pulumi.Int(constants.ProbeTimeoutSeconds),
						PeriodSeconds:       pulumi.Int(constants.ProbePeriodSeconds),
						FailureThreshold:    pulumi.Int(constants.ProbeFailureThreshold),
						TcpSocket: &cloudrunv2.ServiceTemplateContainerStartupProbeTcpSocketArgs{
							Port: pulumi.Int(port),
						},
					},
				},
			},
		},
		Traffics: cloudrunv2.ServiceTrafficArray{
			&cloudrunv2.ServiceTrafficArgs{
				Type:    pulumi.String(constants.ServiceTrafficLatest),
				Percent: pulumi.Int(constants.ServiceTrafficPercent),
			},
		},
	}, pulumi.DependsOn(dependsOn))
	if err != nil {
		return nil, err
	}

	result := &Service{
		Service:     service,
		ServiceHost: serviceHost,
		ServiceURL:  serviceURL,
	}

	if !cfg.AllowUnauthenticated {
		return result, nil
	}

	if err := ledger.Declare(constants.ResourcePublicInvoker); err != nil {
		return nil, err
	}
	invoker, err := cloudrunv2.NewServiceIamMember(ctx, constants.ResourcePublicInvoker, &cloudrunv2.ServiceIamMemberArgs{
		Project:  pulumi.String(cfg.GCP.Project),
		Location: service.Location,
		Name:     service.Name,
		Role:     pulumi.String(constants.RoleRunInvoker),
		Member:   pulumi.String(constants.MemberAllUsers),
	}, pulumi.DependsOn([]pulumi.Resource{service}))
	if err != nil {
		return nil, err
	}
	result.PublicInvoker = invoker

	return result, nil
}

// containerEnv is the environment contract of the n8n image. Names and literal values are
// fixed; secrets are passed as "latest" version references, never as plaintext.
func containerEnv(
	cfg *config.DeploymentConfig,
	args ServiceArgs,
	serviceHost, serviceURL pulumi.StringOutput,
) cloudrunv2.ServiceTemplateContainerEnvArray {
	plain := func(name string, value pulumi.StringPtrInput) *cloudrunv2.ServiceTemplateContainerEnvArgs {
		return &cloudrunv2.ServiceTemplateContainerEnvArgs{
			Name:  pulumi.String(name),
			Value: value,
		}
	}
	secretRef := func(name string, secretID pulumi.StringOutput) *cloudrunv2.ServiceTemplateContainerEnvArgs {
		return &cloudrunv2.ServiceTemplateContainerEnvArgs{
			Name: pulumi.String(name),
			ValueSource: &cloudrunv2.ServiceTemplateContainerEnvValueSourceArgs{
				SecretKeyRef: &cloudrunv2.ServiceTemplateContainerEnvValueSourceSecretKeyRefArgs{
					Secret:  secretID,
					Version: pulumi.String(constants.SecretVersionLatest),
				},
			},
		}
	}

	return cloudrunv2.ServiceTemplateContainerEnvArray{
		plain(constants.EnvN8NPort, pulumi.String(strconv.Itoa(cfg.CloudRun.ContainerPort))),
		plain(constants.EnvN8NProtocol, pulumi.String(constants.ServiceProtocol)),
		plain(constants.EnvDBType, pulumi.String(constants.PostgresDriver)),
		plain(constants.EnvDBDatabase, pulumi.String(cfg.DB.Name)),
		plain(constants.EnvDBUser, pulumi.String(cfg.DB.User)),
		plain(constants.EnvDBHost, pulumi.Sprintf("%s%s", constants.CloudSQLSocketPrefix, args.Database.ConnectionName())),
		plain(constants.EnvDBPort, pulumi.String(constants.PostgresPort)),
		plain(constants.EnvDBSchema, pulumi.String(constants.PostgresSchema)),
		plain(constants.EnvN8NUserFolder, pulumi.String(constants.N8NUserFolder)),
		plain(constants.EnvGenericTimezone, pulumi.String(cfg.Timezone)),
		plain(constants.EnvQueueHealthCheck, pulumi.String(constants.ServiceFeatureEnabled)),
		plain(constants.EnvN8NRunnersEnabled, pulumi.String(constants.ServiceFeatureEnabled)),
		plain(constants.EnvN8NProxyHops, pulumi.String(constants.ServiceProxyHops)),
		plain(constants.EnvN8NHost, serviceHost),
		plain(constants.EnvWebhookURL, serviceURL),
		plain(constants.EnvN8NEditorBaseURL, serviceURL),
		secretRef(constants.EnvDBPassword, args.Secrets.DBPasswordSecret.SecretId),
		secretRef(constants.EnvN8NEncryptionKey, args.Secrets.EncryptionKeySecret.SecretId),
	}
}
