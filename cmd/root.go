package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "invoice and quote generator",
	Example: `docgen serve
docgen context set --server http://localhost:4001 --user <user-id>
docgen template put -n default -f invoice.html
docgen create -t invoice -c Acme
docgen item add -d <doc-id>
docgen item update -d <doc-id> -i 0 -f quantity -v 2
docgen pdf -d <doc-id> -o invoice.pdf
docgen send -d <doc-id> -e client@example.com
docgen render -f invoice.html -o out.pdf`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.AddCommand(renderCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
