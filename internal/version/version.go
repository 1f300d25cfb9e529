package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/scaffoldcheck/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/scaffoldcheck/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/scaffoldcheck/internal/version.Date={{.Date}}
)
