package boot

import "time"

// Config holds the boot settings loaded by core/config (BOOT_* environment variables).
type Config struct {
	// Development enables the restart coordinator.
	Development bool `mapstructure:"development" default:"false"`
	// SuppressShutdownHook disables the restart coordinator in development.
	SuppressShutdownHook bool `mapstructure:"suppress_shutdown_hook" default:"false"`
	// Browse opens the boot URL in the desktop browser once the server listens.
	Browse bool `mapstructure:"browse" default:"false"`
	// ContextPath is the root path the web application is mounted at.
	ContextPath string `mapstructure:"context_path" default:"/"`
	// ConfigFiles is the overlay chain, highest priority first.
	ConfigFiles []string `mapstructure:"config_files" default:""`
	// LoggingFile is an optional logging properties file.
	LoggingFile string `mapstructure:"logging_file" default:""`
	// MarkDir holds the restart mark files.
	MarkDir string `mapstructure:"mark_dir" default:"/tmp/webboot/boot"`
	// PollInterval is the pause between two mark file checks.
	PollInterval time.Duration `mapstructure:"poll_interval" default:"300ms"`
	// ClaimDelay is the wait after touching an existing mark file.
	ClaimDelay time.Duration `mapstructure:"claim_delay" default:"300ms"`
	// LibDir is scanned for *.jar and *.zip archives.
	LibDir string `mapstructure:"lib_dir" default:"lib"`
	// ScanSkip adds archive globs skipped for every scan kind.
	ScanSkip []string `mapstructure:"scan_skip" default:""`

	AnnotationDetect       bool `mapstructure:"annotation_detect" default:"false"`
	MetaInfoResourceDetect bool `mapstructure:"meta_info_resource_detect" default:"false"`
	TldDetect              bool `mapstructure:"tld_detect" default:"false"`
	WebFragmentsDetect     bool `mapstructure:"web_fragments_detect" default:"false"`
	// TldSelector and WebFragmentsSelector are archive name globs; empty means no selector.
	TldSelector          []string `mapstructure:"tld_selector" default:""`
	WebFragmentsSelector []string `mapstructure:"web_fragments_selector" default:""`
}
