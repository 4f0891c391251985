package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/tristendillon/govgen/core/version.Version=v0.2.0"
var Version = "dev"
