package cmd

import (
	"github.com/emrgen/docgen/internal/config"
	"github.com/emrgen/docgen/internal/model"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(migrateCmd())
}

func migrateCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := config.GetDb(config.LoadConfig())
			if err != nil {
				logrus.Error(err)
				return
			}
			if err := model.Migrate(db); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("database migrated")
		},
	}

	return command
}
