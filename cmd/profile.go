package cmd

import (
	"context"
	"os"

	"github.com/emrgen/docgen"
	"github.com/emrgen/docgen/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "company profile commands",
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	profileCmd.AddCommand(getProfileCmd())
	profileCmd.AddCommand(updateProfileCmd())
	profileCmd.AddCommand(uploadLogoCmd())
}

func printProfile(user *model.User) {
	prefs := user.Prefs()
	printField("Company", user.CompanyName)
	printField("Address", user.Address)
	printField("Phone", user.Phone)
	printField("SIRET", user.Siret)
	printField("TVA", user.VATNumber)
	printField("IBAN", user.IBAN)
	printField("BIC", user.BIC)
	printField("Logo", user.Logo)
	printField("Template", prefs.DefaultTemplate)
	printField("Language", prefs.Language)
	printField("Currency", prefs.Currency)
}

func getProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "print the company profile",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient()
			if client == nil {
				return
			}

			user, err := client.GetProfile(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}
			printProfile(user)
		},
	}
}

func updateProfileCmd() *cobra.Command {
	var company, address, phone, siret, tva, iban, bic string
	var template, language, currency string

	command := &cobra.Command{
		Use:     "update",
		Short:   "update the company profile",
		Example: "docgen profile update --company \"Acme SARL\" --language en --currency USD",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient()
			if client == nil {
				return
			}
			ctx := context.Background()

			changed := func(name string, v *string) *string {
				if cmd.Flags().Changed(name) {
					return v
				}
				return nil
			}
			req := &docgen.UpdateProfileRequest{
				CompanyName: changed("company", &company),
				Address:     changed("address", &address),
				Phone:       changed("phone", &phone),
				Siret:       changed("siret", &siret),
				VATNumber:   changed("tva", &tva),
				IBAN:        changed("iban", &iban),
				BIC:         changed("bic", &bic),
			}

			if cmd.Flags().Changed("template") || cmd.Flags().Changed("language") || cmd.Flags().Changed("currency") {
				current, err := client.GetProfile(ctx)
				if err != nil {
					logrus.Error(err)
					return
				}
				prefs := current.Prefs()
				if cmd.Flags().Changed("template") {
					prefs.DefaultTemplate = template
				}
				if cmd.Flags().Changed("language") {
					prefs.Language = language
				}
				if cmd.Flags().Changed("currency") {
					prefs.Currency = currency
				}
				req.Preferences = &prefs
			}

			user, err := client.UpdateProfile(ctx, req)
			if err != nil {
				logrus.Error(err)
				return
			}
			printProfile(user)
		},
	}

	command.Flags().StringVar(&company, "company", "", "company name")
	command.Flags().StringVar(&address, "address", "", "postal address")
	command.Flags().StringVar(&phone, "phone", "", "phone number")
	command.Flags().StringVar(&siret, "siret", "", "SIRET number")
	command.Flags().StringVar(&tva, "tva", "", "VAT number")
	command.Flags().StringVar(&iban, "iban", "", "IBAN")
	command.Flags().StringVar(&bic, "bic", "", "BIC")
	command.Flags().StringVar(&template, "template", "", "default template")
	command.Flags().StringVar(&language, "language", "", "document language, e.g. fr or en")
	command.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code")

	return command
}

func uploadLogoCmd() *cobra.Command {
	var file string

	var required = []string{"file"}

	command := &cobra.Command{
		Use:     "logo",
		Short:   "upload the company logo",
		Example: "docgen profile logo -f logo.png",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			client := newClient()
			if client == nil {
				return
			}

			data, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			user, err := client.UploadLogo(context.Background(), file, data)
			if err != nil {
				logrus.Error(err)
				return
			}
			printField("Logo", user.Logo)
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "image file (required)")

	return command
}
