package app

import (
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured providers and their session state",
	Args:  cobra.NoArgs,
	RunE:  statusCmdFunc,
}

func statusCmdFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	h, err := loadHub(cmd)
	if err != nil {
		return err
	}

	names := h.Providers()
	sort.Strings(names)
	if len(names) == 0 {
		cmd.Println("No providers are enabled.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	defer w.Flush()
	_, _ = w.Write([]byte("PROVIDER\tSTATE\tEXPIRES\n"))

	for _, name := range names {
		engine, err := h.Adapter(name)
		if err != nil {
			return err
		}
		connected, err := engine.IsConnected(ctx)
		if err != nil {
			return err
		}

		state := "signed out"
		expires := "-"
		if connected {
			state = "signed in"
			cred, err := engine.AccessToken(ctx)
			if err != nil {
				return err
			}
			if cred.ExpiresAt > 0 {
				expires = time.Unix(cred.ExpiresAt, 0).Local().Format(time.RFC822)
			}
		}
		_, _ = w.Write([]byte(name + "\t" + state + "\t" + expires + "\n"))
	}
	return nil
}
