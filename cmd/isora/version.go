package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			rev, modified := vcsRevision()
			fmt.Printf("isora %s", version)
			if rev != "" {
				fmt.Printf(" (%s", rev)
				if modified {
					fmt.Print("-dirty")
				}
				fmt.Print(")")
			}
			fmt.Printf(" %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	return cmd
}

// vcsRevision reads the short commit hash stamped by the Go linker, so
// plain `go install` builds report something useful without ldflags.
func vcsRevision() (rev string, modified bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 12 {
				rev = s.Value[:12]
			} else {
				rev = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return rev, modified
}
