package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/emrgen/docgen/internal/config"
	"github.com/emrgen/docgen/internal/model"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/substitute"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// renderCmd renders a local markup file without a server.
func renderCmd() *cobra.Command {
	var file string
	var data string
	var output string
	var engine string
	var lang string
	var currency string

	var required = []string{"file"}

	command := &cobra.Command{
		Use:     "render",
		Short:   "render a markup file to pdf locally",
		Example: "docgen render -f invoice.html -d content.json -o invoice.pdf",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			markup, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			fields := map[string]any{}
			if data != "" {
				raw, err := os.ReadFile(data)
				if err != nil {
					logrus.Error(err)
					return
				}
				var content model.Content
				if err := json.Unmarshal(raw, &content); err != nil {
					logrus.Error(err)
					return
				}
				fields = content.Fields()
			}

			cfg := config.LoadConfig()
			if engine == "" {
				engine = cfg.Render.Engine
			}
			renderer, err := render.New(render.Options{
				Engine:      engine,
				Timeout:     cfg.Render.Timeout,
				Concurrency: 1,
				ChromePath:  cfg.Render.ChromePath,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			out := substitute.New(substitute.Helpers(lang, currency)).Execute(string(markup), fields)
			pdf, err := renderer.Render(context.Background(), out)
			if err != nil {
				logrus.Error(err)
				return
			}

			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				logrus.Error(err)
				return
			}

			info, err := render.Inspect(pdf)
			if err != nil {
				logrus.Error(err)
				return
			}
			color.Green("wrote %s: %d pages, %.0fx%.0f pt", output, info.Pages, info.Width, info.Height)
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "markup file (required)")
	command.Flags().StringVarP(&data, "data", "d", "", "json document content")
	command.Flags().StringVarP(&output, "output", "o", "out.pdf", "output file")
	command.Flags().StringVarP(&engine, "engine", "e", "", "gofpdf or chrome, defaults to RENDER_ENGINE")
	command.Flags().StringVar(&lang, "lang", model.DefaultLanguage, "language of the helpers")
	command.Flags().StringVar(&currency, "currency", model.DefaultCurrency, "currency of formatMoney")

	command.Flags().SortFlags = false

	return command
}
