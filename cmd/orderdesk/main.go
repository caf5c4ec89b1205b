// Command orderdesk is the Orderdesk CLI.
//
//	orderdesk serve        # start the HTTP server
//	orderdesk seed         # create data files and the admin account
//	orderdesk route:list   # print the route table
//	orderdesk restore      # pull resource files back from the backup disk
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "Orderdesk — order tracking backend",
	Long:  "Orderdesk is a small order-tracking backend with flat-file JSON storage.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(restoreCmd)
}
