package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutAll bool

var logoutCmd = &cobra.Command{
	Use:   "logout [provider]",
	Short: "Delete the stored session for a provider",
	Args:  cobra.MaximumNArgs(1),
	RunE:  logoutCmdFunc,
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Delete the stored sessions of every provider")
}

func logoutCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	h, err := loadHub(cmd)
	if err != nil {
		return err
	}

	if logoutAll {
		if err := h.DisconnectAll(ctx); err != nil {
			return err
		}
		cmd.Println("Signed out of all providers.")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("provide a provider name or --all")
	}

	engine, err := h.Adapter(args[0])
	if err != nil {
		return err
	}
	if err := engine.Disconnect(ctx); err != nil {
		return err
	}
	cmd.Printf("Signed out of %s.\n", args[0])
	return nil
}
