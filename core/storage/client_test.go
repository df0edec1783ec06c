package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		host     string
		secure   bool
	}{
		{"Bare", "localhost:9000", "localhost:9000", false},
		{"HTTP", "http://localhost:9000", "localhost:9000", false},
		{"HTTPS", "https://s3.amazonaws.com/", "s3.amazonaws.com", true},
		{"Spaces", "  minio:9000 ", "minio:9000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure := splitEndpoint(tt.endpoint)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		client, err := NewClient(Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "archives",
			Prefix:    "lib/",
		})
		require.NoError(t, err)
		assert.IsType(t, &bucketClient{}, client)
	})

	t.Run("HTTPSEndpoint", func(t *testing.T) {
		client, err := NewClient(Config{
			Endpoint: "https://s3.amazonaws.com",
			Region:   "us-east-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "https", client.(*bucketClient).mc.EndpointURL().Scheme)
	})

	t.Run("EmptyEndpoint", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})
}
