// ABOUTME: Build version information
// ABOUTME: Version is overridden at link time with -ldflags "-X ...version.Version=v1.2.3"
package version

// Version of the streamenc build
var Version = "0.1.0-dev"

const (
	// Product is reported by `streamenc version` and the stream server hello
	Product = "streamenc"

	// Manufacturer identifies who ships the build
	Manufacturer = "Resonate"
)

// String renders "streamenc 0.1.0-dev"
func String() string {
	return Product + " " + Version
}
