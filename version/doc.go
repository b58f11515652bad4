// Package version reports build information for the intersect command.
//
// Version, Commit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/consensus/version.Version=1.2.0"
//
// Missing values fall back to the VCS stamps in the binary's build info.
package version
