// =============================================================================
// EDI 944 Mapper - Version Command
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X github.com/outsourceai/edi-mapper/cmd.Version=1.2.0"
var (
	// Version is the application version.
	Version = "1.0.0"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"
)

// versionCmd prints version and build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("EDI 944 Mapper v%s\n", Version)
		fmt.Printf("  Build date: %s\n", BuildDate)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
