package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "abtest",
		Short:         "Layout experiments for the HR forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn or error")
	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetReportCaller(true)

	if err := newRootCommand().Execute(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}
