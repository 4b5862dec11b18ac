package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the route table of the preview server, one pattern per
line in registration-independent sorted order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := previewApp(0, "", false)
			if err != nil {
				return err
			}
			defer app.Sessions().Close()

			patterns := app.Router().Patterns()
			for _, p := range patterns {
				fmt.Println(p)
			}
			fmt.Println()
			info("%d routes", len(patterns))
			return nil
		},
	}
	return cmd
}
