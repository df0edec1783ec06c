// Package config provides configuration management for webboot.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (godotenv). Defaults come from the `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: port, bind address, shutdown timeout
//   - Boot: development restart, overlay files, feature detection and selectors
//   - Storage: S3/MinIO bucket archives are fetched from
//   - Log: Logging level, format and output
//
// Keys map to environment variables by replacing dots with underscores, so
// boot.tld_selector is read from BOOT_TLD_SELECTOR (comma separated).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
