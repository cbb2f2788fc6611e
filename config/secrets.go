package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the slice of the SSM API used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewParameterGetter builds an SSM client from the default AWS credential chain.
func NewParameterGetter(ctx context.Context) (ParameterGetter, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// getParameterStoreValue returns the decrypted value of an SSM parameter.
func getParameterStoreValue(ctx context.Context, client ParameterGetter, name string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := client.GetParameter(ctxWithTimeout, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}
	return *result.Parameter.Value, nil
}

// ResolveSecrets replaces credentials with their Parameter Store values when
// running in prod and a parameter name is configured. Fields without a
// parameter name keep whatever the file or environment provided.
func (c *Config) ResolveSecrets(ctx context.Context, client ParameterGetter) error {
	if c.Environment != "prod" {
		return nil
	}

	targets := []struct {
		param string
		dst   *string
	}{
		{c.Telegram.TokenSSM, &c.Telegram.Token},
		{c.Telegram.ChatSSM, &c.Telegram.ChatID},
		{c.Postgres.HostSSM, &c.Postgres.Host},
		{c.Postgres.UserSSM, &c.Postgres.User},
		{c.Postgres.PasswordSSM, &c.Postgres.Password},
	}

	for _, t := range targets {
		if t.param == "" {
			continue
		}
		value, err := getParameterStoreValue(ctx, client, t.param)
		if err != nil {
			return err
		}
		*t.dst = value
	}
	return nil
}

// NeedsSecrets reports whether ResolveSecrets would call Parameter Store.
func (c *Config) NeedsSecrets() bool {
	if c.Environment != "prod" {
		return false
	}
	for _, p := range []string{c.Telegram.TokenSSM, c.Telegram.ChatSSM, c.Postgres.HostSSM, c.Postgres.UserSSM, c.Postgres.PasswordSSM} {
		if p != "" {
			return true
		}
	}
	return false
}
