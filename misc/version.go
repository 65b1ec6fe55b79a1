// Package misc keeps build time information.
package misc

// Set by the linker: -ldflags "-X obsync/misc.version=... -X obsync/misc.gitHash=...".
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "obsync"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
