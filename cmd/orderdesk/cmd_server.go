package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/orderdesk/internal/server"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

// orderdesk serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// orderdesk run — alias kept for muscle memory.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the HTTP server (alias: serve)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// orderdesk seed — create the data files and admin account without serving.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create data files and the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(); err != nil {
			return err
		}
		fmt.Println("Seed complete.")
		return nil
	},
}

// orderdesk route:list — print the route table.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(); err != nil {
			return err
		}

		infos := server.NewRouter().Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// orderdesk restore — copy resource files back from the backup disk.
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore resource files from the backup disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.Boot(); err != nil {
			return err
		}

		for _, name := range []string{"users", "orders", "messages"} {
			if err := jsonstore.Restore(name); err != nil {
				fmt.Printf("skipped %s: %v\n", name, err)
				continue
			}
			fmt.Printf("restored %s.json\n", name)
		}
		return nil
	},
}
