package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/smithy-go"

	"dbobjects/internal/domain"
)

// Compile-time check.
var _ domain.StatementAPI = (*RedshiftDataClient)(nil)

// RedshiftDataAPI is the subset of the Data API client used here.
type RedshiftDataAPI interface {
	ExecuteStatement(ctx context.Context, params *redshiftdata.ExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
}

// RedshiftDataClient implements domain.StatementAPI over the Redshift Data API.
// Workgroup targets run with the caller's IAM identity; namespace targets run
// against the provisioned cluster of the same name with the admin secret.
type RedshiftDataClient struct {
	api RedshiftDataAPI
}

// NewRedshiftDataClient wraps a Data API client.
func NewRedshiftDataClient(api RedshiftDataAPI) *RedshiftDataClient {
	return &RedshiftDataClient{api: api}
}

// Submit starts sql and returns the backend statement id. The id may be empty
// if the backend misbehaves; the Executor treats that as a service error.
func (c *RedshiftDataClient) Submit(ctx context.Context, sql string, target domain.ExecutionTarget) (string, error) {
	input := &redshiftdata.ExecuteStatementInput{
		Sql:      aws.String(sql),
		Database: aws.String(target.DatabaseName),
	}
	switch target.Kind {
	case domain.TargetWorkgroup:
		input.WorkgroupName = aws.String(target.WorkgroupName)
	case domain.TargetNamespace:
		// Provisioned cluster addressing.
		input.ClusterIdentifier = aws.String(target.NamespaceName)
		input.SecretArn = aws.String(target.AdminSecretARN)
	default:
		return "", domain.ErrValidation("unknown target kind %s", target.Kind)
	}

	out, err := c.api.ExecuteStatement(ctx, input)
	if err != nil {
		return "", classifyAPIError("execute statement", err)
	}
	return aws.ToString(out.Id), nil
}

// Describe returns the current status of a submitted statement.
func (c *RedshiftDataClient) Describe(ctx context.Context, statementID string) (domain.StatementDescription, error) {
	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(statementID)})
	if err != nil {
		return domain.StatementDescription{}, classifyAPIError("describe statement", err)
	}
	return domain.StatementDescription{
		Status: domain.StatementStatus(out.Status),
		Error:  aws.ToString(out.Error),
	}, nil
}

// classifyAPIError surfaces AWS API errors as *domain.ServiceError carrying
// the error code. Other errors (context cancellation, transport) are wrapped.
func classifyAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &domain.ServiceError{
			Code:    apiErr.ErrorCode(),
			Message: fmt.Sprintf("%s: %s", op, apiErr.ErrorMessage()),
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
