package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "template commands",
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	templateCmd.AddCommand(listTemplatesCmd())
	templateCmd.AddCommand(getTemplateCmd())
	templateCmd.AddCommand(putTemplateCmd())
	templateCmd.AddCommand(deleteTemplateCmd())
}

func listTemplatesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list templates",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient()
			if client == nil {
				return
			}

			tmpls, err := client.ListTemplates(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Size", "Updated"})
			for _, tmpl := range tmpls {
				table.Append([]string{tmpl.Name, fmt.Sprint(len(tmpl.Content)), tmpl.UpdatedAt.Format("2006-01-02 15:04")})
			}
			table.Render()
		},
	}

	return command
}

func getTemplateCmd() *cobra.Command {
	var name string

	var required = []string{"name"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "print a template",
		Example: "docgen template get -n default",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			tmpl, err := client.GetTemplate(context.Background(), name)
			if err != nil {
				logrus.Error(err)
				return
			}
			printField("Name", tmpl.Name)
			fmt.Println(tmpl.Content)
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "template name (required)")

	return command
}

func putTemplateCmd() *cobra.Command {
	var name string
	var file string

	var required = []string{"name", "file"}

	command := &cobra.Command{
		Use:     "put",
		Short:   "create or replace a template from a file",
		Example: "docgen template put -n default -f invoice.html",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			content, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			tmpl, err := client.PutTemplate(context.Background(), name, string(content))
			if err != nil {
				logrus.Error(err)
				return
			}
			color.Green("template %s saved", tmpl.Name)
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "template name (required)")
	command.Flags().StringVarP(&file, "file", "f", "", "markup file (required)")

	return command
}

func deleteTemplateCmd() *cobra.Command {
	var name string
	var force bool

	var required = []string{"name"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a template",
		Example: "docgen template delete -n old --force",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			if err := client.DeleteTemplate(context.Background(), name, force); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("template %s deleted", name)
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "template name (required)")
	command.Flags().BoolVar(&force, "force", false, "delete even when documents still use it")

	return command
}
