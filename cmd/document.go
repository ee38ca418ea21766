package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/docgen"
	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/model"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "line item commands",
}

func init() {
	rootCmd.AddCommand(createDocCmd())
	rootCmd.AddCommand(getDocCmd())
	rootCmd.AddCommand(listDocCmd())
	rootCmd.AddCommand(updateDocCmd())
	rootCmd.AddCommand(deleteDocCmd())
	rootCmd.AddCommand(pdfDocCmd())
	rootCmd.AddCommand(sendDocCmd())

	rootCmd.AddCommand(itemCmd)
	itemCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	itemCmd.AddCommand(addItemCmd())
	itemCmd.AddCommand(updateItemCmd())
}

func createDocCmd() *cobra.Command {
	var docType string
	var template string
	var clientName string

	var required = []string{"type"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Long:    `create an invoice or a quote, line items are added with the item commands`,
		Example: "docgen create -t invoice -c Acme -m default",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.CreateDocument(context.Background(), &docgen.CreateDocumentRequest{
				Type:     model.DocumentType(docType),
				Template: template,
				Content:  model.Content{ClientName: clientName},
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("document created with id: %s", doc.ID)
			printDocuments(doc)
		},
	}

	command.Flags().StringVarP(&docType, "type", "t", "", "invoice or quote (required)")
	command.Flags().StringVarP(&template, "template", "m", "", "template name, defaults to the user preference")
	command.Flags().StringVarP(&clientName, "client", "c", "", "client name")

	command.Flags().SortFlags = false

	return command
}

func getDocCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a document",
		Example: "docgen get -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.GetDocument(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}

			printDocuments(doc)
			printItems(doc.Data())
			if doc.PDFURL != "" {
				printField("PDF", doc.PDFURL)
			}
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")

	return command
}

func listDocCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "list",
		Short:   "list documents, newest first",
		Example: "docgen list",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient()
			if client == nil {
				return
			}

			docs, err := client.ListDocuments(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			printDocuments(docs...)
		},
	}

	return command
}

func updateDocCmd() *cobra.Command {
	var docID string
	var status string
	var template string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update the status or template of a document",
		Example: "docgen update -d <doc-id> -s paid",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.UpdateDocument(context.Background(), docID, &docgen.UpdateDocumentRequest{
				Status:   model.DocumentStatus(status),
				Template: template,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			printDocuments(doc)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().StringVarP(&status, "status", "s", "", "draft or paid")
	command.Flags().StringVarP(&template, "template", "m", "", "template name")

	return command
}

func deleteDocCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a document",
		Example: "docgen delete -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			if err := client.DeleteDocument(context.Background(), docID); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("document %s deleted", docID)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")

	return command
}

func pdfDocCmd() *cobra.Command {
	var docID string
	var output string
	var store bool

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "pdf",
		Short:   "render a document to pdf",
		Example: "docgen pdf -d <doc-id> -o invoice.pdf\ndocgen pdf -d <doc-id> --store",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			if store {
				ref, err := client.StorePDF(context.Background(), docID)
				if err != nil {
					logrus.Error(err)
					return
				}
				printField("PDF", ref)
				return
			}

			data, err := client.DocumentPDF(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}
			if output == "" {
				output = docID + ".pdf"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("wrote %s (%d bytes)", output, len(data))
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to <doc-id>.pdf")
	command.Flags().BoolVar(&store, "store", false, "store the pdf on the server and print its reference")

	return command
}

func sendDocCmd() *cobra.Command {
	var docID string
	var email string
	var message string

	var required = []string{"doc-id", "email"}

	command := &cobra.Command{
		Use:     "send",
		Short:   "email a document as a pdf attachment",
		Example: "docgen send -d <doc-id> -e client@example.com -m \"Thanks for your order\"",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.SendDocument(context.Background(), docID, email, message)
			if err != nil {
				logrus.Error(err)
				return
			}
			color.Green("%s sent to %s", doc.Number, email)
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().StringVarP(&email, "email", "e", "", "recipient (required)")
	command.Flags().StringVarP(&message, "message", "m", "", "message, a default is used when empty")

	return command
}

func addItemCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "add",
		Short:   "append an empty line item",
		Example: "docgen item add -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.AddItem(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}
			printItems(doc.Data())
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")

	return command
}

func updateItemCmd() *cobra.Command {
	var docID string
	var index int
	var field string
	var value string

	var required = []string{"doc-id", "index", "field"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "set a field of a line item",
		Example: "docgen item update -d <doc-id> -i 0 -f price -v 12.50",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			doc, err := client.UpdateItem(context.Background(), docID, index, field, value)
			if err != nil {
				logrus.Error(err)
				return
			}
			printItems(doc.Data())
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "d", "", "document id (required)")
	command.Flags().IntVarP(&index, "index", "i", 0, "item position (required)")
	command.Flags().StringVarP(&field, "field", "f", "", "description, quantity or price (required)")
	command.Flags().StringVarP(&value, "value", "v", "", "new value")

	command.Flags().SortFlags = false

	return command
}

func printDocuments(docs ...*model.Document) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Number", "Type", "Status", "Client", "Total", "Created"})
	for _, doc := range docs {
		content := doc.Data()
		table.Append([]string{
			doc.ID,
			doc.Number,
			string(doc.Type),
			string(doc.Status),
			content.ClientName,
			calc.Display(content.Total),
			doc.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}

func printItems(content model.Content) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Description", "Quantity", "Price", "Amount"})
	for i, item := range content.Items {
		table.Append([]string{
			strconv.Itoa(i),
			item.Description,
			item.Quantity.String(),
			calc.Display(item.Price),
			calc.Display(item.Amount()),
		})
	}
	table.SetFooter([]string{"", "", "", "Total", calc.Display(content.Total)})
	table.Render()
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns true if any is missing
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, "--"+required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		color.Red("missing: %s\n", strings.Join(missingFlags, " "))
		if len(providedFlags) > 0 {
			color.Green("provide: %s\n", strings.Join(providedFlags, " "))
		}

		cmd.Println("")
		_ = cmd.Usage()
		return true
	}

	return false
}
