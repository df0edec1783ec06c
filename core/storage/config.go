package storage

// Config holds configuration for the bucket archives are staged in.
type Config struct {
	// Enabled adds the bucket as an archive source at boot.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding the archives.
	Bucket string `mapstructure:"bucket" default:"webboot"`
	// Prefix limits the archives to the objects under this prefix (e.g. "lib/").
	Prefix string `mapstructure:"prefix" default:"lib/"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxArchiveMB caps the size of a single downloaded archive.
	MaxArchiveMB int `mapstructure:"max_archive_mb" default:"64"`
}
