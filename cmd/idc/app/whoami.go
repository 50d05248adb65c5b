package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/idconnect/idconnect/pkg/provider"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami <provider>",
	Short: "Fetch and print your normalized profile from a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  whoamiCmdFunc,
}

func whoamiCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	h, err := loadHub(cmd)
	if err != nil {
		return err
	}
	engine, err := h.Adapter(name)
	if err != nil {
		return err
	}

	if !engine.Descriptor().Capabilities.Supports(provider.CapabilityProfile) {
		return fmt.Errorf("provider %s does not expose a user profile", name)
	}

	// Bring a refreshable expired token up to date before the API call.
	if err := engine.MaintainToken(ctx); err != nil {
		return err
	}

	p, err := engine.Profile(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	printField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}
	printField("Identifier", p.Identifier)
	printField("Display name", p.DisplayName)
	printField("First name", p.FirstName)
	printField("Last name", p.LastName)
	printField("Email", p.Email)
	printField("Profile URL", p.ProfileURL)
	printField("Photo URL", p.PhotoURL)
	printField("Language", p.Language)
	printField("Country", p.Country)
	return nil
}
