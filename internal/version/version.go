package version

// Version is overridden at build time with -ldflags "-X admin-console-go/internal/version.Version=...".
var Version = "dev"
