package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"dbobjects/internal/domain"
)

// Compile-time check.
var _ domain.SecretResolver = (*SecretsManagerResolver)(nil)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerResolver resolves secret ARNs holding {"username","password"} JSON.
type SecretsManagerResolver struct {
	api SecretsManagerAPI
}

// NewSecretsManagerResolver wraps a Secrets Manager client.
func NewSecretsManagerResolver(api SecretsManagerAPI) *SecretsManagerResolver {
	return &SecretsManagerResolver{api: api}
}

// ResolveCredentials fetches and decodes the secret. A missing secret yields
// *domain.NotFoundError and an empty or malformed one *domain.ValidationError.
func (r *SecretsManagerResolver) ResolveCredentials(ctx context.Context, secretARN string) (domain.Credentials, error) {
	if secretARN == "" {
		return domain.Credentials{}, domain.ErrValidation("secret ARN is required")
	}

	out, err := r.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretARN)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return domain.Credentials{}, domain.ErrNotFound("secret %s not found", secretARN)
		}
		return domain.Credentials{}, classifyAPIError("get secret value", err)
	}

	secret := aws.ToString(out.SecretString)
	if secret == "" {
		return domain.Credentials{}, domain.ErrValidation("secret string for %s was empty", secretARN)
	}

	var creds domain.Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return domain.Credentials{}, domain.ErrValidation("secret %s is not valid credentials JSON", secretARN)
	}
	if creds.Password == "" {
		return domain.Credentials{}, domain.ErrValidation("secret %s has no password", secretARN)
	}
	return creds, nil
}
