package config

// Linker-injected build metadata, for example:
//
//	go build -ldflags "-X rainalert/internal/config.version=1.2.3 \
//	    -X rainalert/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X rainalert/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/rain-alert
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// String renders the build metadata for -version output and startup logs.
func (b BuildInfo) String() string {
	return b.Version + " (" + b.Commit + ", built " + b.BuildTime + ")"
}
