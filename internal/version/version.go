package version

// Version is the current version of argo-stocks.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-stocks/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// SchemaVersion is the version of the ledger database schema written by
// this build. Bump the minor version for additive changes and the major
// version for changes older builds cannot read.
const SchemaVersion = "1.0.0"

// GetVersion returns the current version of the application.
func GetVersion() string {
	return Version
}
