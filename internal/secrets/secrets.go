// Package secrets fetches JSON secret payloads from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// API is the slice of the Secrets Manager client this package uses.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Client retrieves and decodes JSON secrets by ARN or name.
type Client struct {
	api API
}

// NewClient wraps a Secrets Manager client.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from an AWS SDK configuration.
func NewFromConfig(cfg aws.Config) *Client {
	return NewClient(secretsmanager.NewFromConfig(cfg))
}

// SecretJSON fetches the secret payload and decodes it as a JSON object.
func (c *Client) SecretJSON(ctx context.Context, secretRef string) (map[string]any, error) {
	if secretRef == "" {
		return nil, fmt.Errorf("secret reference is required")
	}

	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretRef),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret value %s: %w", secretRef, err)
	}

	raw := aws.ToString(out.SecretString)
	if raw == "" && len(out.SecretBinary) > 0 {
		raw = string(out.SecretBinary)
	}
	if raw == "" {
		return nil, fmt.Errorf("secret %s has an empty payload", secretRef)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode secret %s as JSON object: %w", secretRef, err)
	}
	return payload, nil
}
