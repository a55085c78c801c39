package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release builds stamp these via -ldflags; source builds fall back to
// module build info.
var (
	version = ""
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mathpilot", buildVersion())
	},
}

func buildVersion() string {
	v := version
	if v == "" {
		v = "(devel)"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			v = info.Main.Version
		}
	}
	if commit != "" {
		v += " (" + commit + ")"
	}
	return v
}
