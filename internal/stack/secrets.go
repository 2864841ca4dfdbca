package stack

import (
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/secretmanager"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

// SecretsArgs is the input of ProvisionSecrets.
type SecretsArgs struct {
	Project string
	// Prefix of both secret ids, normally the service name.
	Prefix           string
	DBPassword       pulumi.StringOutput
	Account          *serviceaccount.Account
	SecretManagerAPI *projects.Service
}

// Secrets holds both secret containers, their versions and accessor grants.
type Secrets struct {
	EncryptionKey               *random.RandomPassword
	DBPasswordSecret            *secretmanager.Secret
	DBPasswordSecretVersion     *secretmanager.SecretVersion
	DBPasswordSecretAccessor    *secretmanager.SecretIamMember
	EncryptionKeySecret         *secretmanager.Secret
	EncryptionKeySecretVersion  *secretmanager.SecretVersion
	EncryptionKeySecretAccessor *secretmanager.SecretIamMember
}

// Versions returns both secret versions.
func (s *Secrets) Versions() []pulumi.Resource {
	return []pulumi.Resource{s.DBPasswordSecretVersion, s.EncryptionKeySecretVersion}
}

// Accessors returns both accessor grants.
func (s *Secrets) Accessors() []pulumi.Resource {
	return []pulumi.Resource{s.DBPasswordSecretAccessor, s.EncryptionKeySecretAccessor}
}

// storedSecret is one secret container with its single version and accessor grant.
type storedSecret struct {
	secret   *secretmanager.Secret
	version  *secretmanager.SecretVersion
	accessor *secretmanager.SecretIamMember
}

type storedSecretNames struct {
	secret, version, accessor string
}

// ProvisionSecrets declares the encryption key and stores it, together with the database
// password, in Secret Manager readable by the service account only.
func ProvisionSecrets(ctx *pulumi.Context, ledger *graph.Ledger, args SecretsArgs) (*Secrets, error) {
	if err := ledger.Declare(constants.ResourceEncryptionKey); err != nil {
		return nil, err
	}
	encryptionKey, err := random.NewRandomPassword(ctx, constants.ResourceEncryptionKey, &random.RandomPasswordArgs{
		Length:  pulumi.Int(constants.EncryptionKeyLength),
		Special: pulumi.Bool(false),
	})
	if err != nil {
		return nil, err
	}

	dbPassword, err := storeSecret(ctx, ledger, args, storedSecretNames{
		secret:   constants.ResourceDBPasswordSecret,
		version:  constants.ResourceDBPasswordVersion,
		accessor: constants.ResourceDBPasswordAccessor,
	}, args.Prefix+constants.SecretSuffixDBPassword, args.DBPassword)
	if err != nil {
		return nil, err
	}

	encKey, err := storeSecret(ctx, ledger, args, storedSecretNames{
		secret:   constants.ResourceEncKeySecret,
		version:  constants.ResourceEncKeyVersion,
		accessor: constants.ResourceEncKeyAccessor,
	}, args.Prefix+constants.SecretSuffixEncryptionKey, encryptionKey.Result)
	if err != nil {
		return nil, err
	}

	return &Secrets{
		EncryptionKey:               encryptionKey,
		DBPasswordSecret:            dbPassword.secret,
		DBPasswordSecretVersion:     dbPassword.version,
		DBPasswordSecretAccessor:    dbPassword.accessor,
		EncryptionKeySecret:         encKey.secret,
		EncryptionKeySecretVersion:  encKey.version,
		EncryptionKeySecretAccessor: encKey.accessor,
	}, nil
}

func storeSecret(
	ctx *pulumi.Context,
	ledger *graph.Ledger,
	args SecretsArgs,
	names storedSecretNames,
	secretID string,
	payload pulumi.StringOutput,
) (*storedSecret, error) {
	if err := ledger.Declare(names.secret); err != nil {
		return nil, err
	}
	secret, err := secretmanager.NewSecret(ctx, names.secret, &secretmanager.SecretArgs{
		Project:  pulumi.String(args.Project),
		SecretId: pulumi.String(secretID),
		Replication: &secretmanager.SecretReplicationArgs{
			Auto: &secretmanager.SecretReplicationAutoArgs{},
		},
	}, pulumi.DependsOn([]pulumi.Resource{args.SecretManagerAPI}))
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(names.version); err != nil {
		return nil, err
	}
	version, err := secretmanager.NewSecretVersion(ctx, names.version, &secretmanager.SecretVersionArgs{
		Secret:     secret.ID().ToStringOutput(),
		SecretData: payload,
	})
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(names.accessor); err != nil {
		return nil, err
	}
	accessor, err := secretmanager.NewSecretIamMember(ctx, names.accessor, &secretmanager.SecretIamMemberArgs{
		Project:  secret.Project,
		SecretId: secret.SecretId,
		Role:     pulumi.String(constants.RoleSecretAccessor),
		Member:   serviceAccountMember(args.Account),
	}, pulumi.DependsOn([]pulumi.Resource{secret, args.Account}))
	if err != nil {
		return nil, err
	}

	return &storedSecret{secret: secret, version: version, accessor: accessor}, nil
}
