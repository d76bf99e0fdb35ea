package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	root := &cobra.Command{
		Use:           "librarydesk",
		Short:         "Small record-keeping tool for a library",
		Long:          "librarydesk tracks books, members and borrow/return transactions over one shared records file, through a web UI or an interactive console.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(GitCommit, GitTag, BuildTime)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}

	console := &cobra.Command{
		Use:   "console",
		Short: "Start the interactive text-menu front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunConsole(GitCommit, GitTag, BuildTime)
		},
	}

	root.AddCommand(serve, console)

	if err := root.Execute(); err != nil {
		log.Fatal("application exited. check logs for more details: ", err)
	}
}
