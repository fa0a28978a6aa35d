package version

// Version is set at build time:
// go build -ldflags "-X github.com/techshelf/techshelf/pkg/version.Version=1.0.0".
var Version = "dev"
