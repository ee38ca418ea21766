package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emrgen/docgen"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configDir      = "./.tmp"
	configFileName = "docgen"
	defaultServer  = "http://localhost:4001"
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

// Context is the server and user the cli talks to.
type Context struct {
	Server string `mapstructure:"server"`
	User   string `mapstructure:"user"`
}

func setContextCommand() *cobra.Command {
	var server string
	var user string
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := uuid.Parse(user); err != nil {
				color.Red(`missing or invalid: --user`)
				return
			}
			if server == "" {
				server = defaultServer
			}

			if err := writeContext(Context{Server: server, User: user}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&server, "server", "s", defaultServer, "server url")
	command.Flags().StringVarP(&user, "user", "u", "", "user id")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := readContext()
			printField("Server", ctx.Server)
			printField("User", ctx.User)
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			if err := writeContext(Context{Server: defaultServer}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context reset")
		},
	}

	return command
}

func contextFile() string {
	return filepath.Join(configDir, configFileName+".yml")
}

// ensureContextFile creates the context file when it doesn't exist.
func ensureContextFile() error {
	if _, err := os.Stat(contextFile()); err == nil {
		return nil
	}
	if err := os.MkdirAll(configDir, os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(contextFile())
	if err != nil {
		return err
	}
	return file.Close()
}

func contextViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.AddConfigPath(configDir)
	v.SetConfigType("yml")
	return v
}

func writeContext(ctx Context) error {
	if err := ensureContextFile(); err != nil {
		return err
	}
	v := contextViper()
	v.Set("context.server", ctx.Server)
	v.Set("context.user", ctx.User)
	return v.WriteConfig()
}

func readContext() Context {
	ctx := Context{Server: defaultServer}

	if err := ensureContextFile(); err != nil {
		fmt.Println("error creating config file: ", err)
		return ctx
	}

	v := contextViper()
	if err := v.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
		return ctx
	}

	if err := v.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}
	if ctx.Server == "" {
		ctx.Server = defaultServer
	}

	return ctx
}

// newClient returns a client for the current context, or nil after printing
// what is missing.
func newClient() *docgen.Client {
	ctx := readContext()
	if ctx.User == "" {
		color.Red("no user in context, run: docgen context set --user <user-id>")
		return nil
	}
	return docgen.NewClient(ctx.Server, ctx.User)
}
