package awsx

import (
	"context"
	"testing"

	"github.com/go-referral-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StaticCredentialsAndRegion(t *testing.T) {
	cfg := &config.Config{AWSRegion: "ap-south-1", AWSAccessKeyID: "test", AWSSecretKey: "secret"}

	awsCfg, err := Load(context.Background(), cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestLoad_RegionOverride(t *testing.T) {
	cfg := &config.Config{AWSRegion: "ap-south-1", AWSAccessKeyID: "test", AWSSecretKey: "secret"}

	awsCfg, err := Load(context.Background(), cfg, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", awsCfg.Region)
}

func TestEndpoint(t *testing.T) {
	assert.Nil(t, Endpoint(&config.Config{}))
	ep := Endpoint(&config.Config{AWSEndpointURL: "http://localhost:4566"})
	require.NotNil(t, ep)
	assert.Equal(t, "http://localhost:4566", *ep)
}
