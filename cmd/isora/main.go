package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

// version is overridable at build time; release builds also carry the
// VCS revision via the build info (see versionCmd).
var version = "dev"

const banner = `
  ╦┌─┐┌─┐┬─┐┌─┐
  ║└─┐│ │├┬┘├─┤
  ╩└─┘└─┘┴└─┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "isora",
		Short: "Server-side rendering toolkit for Go web applications",
		Long: `Isora renders Go component trees to HTML on the server.

The CLI runs a preview server, inspects the route table, and
publishes hashed static assets:

  • Preview server with hot reload
  • Route table inspection
  • Asset publishing to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
		assetsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Isora ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
