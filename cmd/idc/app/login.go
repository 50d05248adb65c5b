package app

import (
	"context"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/idconnect/idconnect/pkg/flow"
	"github.com/idconnect/idconnect/pkg/hub"
	"github.com/idconnect/idconnect/pkg/provider"
)

const loginTimeout = 5 * time.Minute

var loginSkipBrowser bool

var loginCmd = &cobra.Command{
	Use:   "login <provider>",
	Short: "Sign in to a provider through the browser",
	Long: `Login starts the authorization flow for the given provider: it runs a
local callback server at the configured callback URL, opens the provider's
authorization page in your browser and stores the resulting tokens in the
credential store.`,
	Args: cobra.ExactArgs(1),
	RunE: loginCmdFunc,
}

func init() {
	loginCmd.Flags().BoolVar(&loginSkipBrowser, "skip-browser", false,
		"Print the authorization URL instead of opening a browser")
}

func loginCmdFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	redirector := flow.RedirectorFunc(func(_ context.Context, authorizeURL string) error {
		if loginSkipBrowser {
			cmd.Printf("Open this URL in your browser:\n\n  %s\n\n", authorizeURL)
			return nil
		}
		cmd.Println("Opening your browser to complete sign-in...")
		if err := browser.OpenURL(authorizeURL); err != nil {
			cmd.Printf("Could not open a browser. Open this URL yourself:\n\n  %s\n\n", authorizeURL)
		}
		return nil
	})

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	h, err := hub.New(cfg, st, hub.WithRedirector(redirector))
	if err != nil {
		return err
	}

	cs, err := newCallbackServer(cfg.CallbackURL)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	cs.start(errCh)
	defer cs.shutdown()

	authorizeURL, err := h.Authenticate(ctx, name)
	if err != nil {
		return err
	}
	if authorizeURL == "" {
		cmd.Printf("Already signed in to %s.\n", name)
		return nil
	}

	params, err := cs.wait(ctx, loginTimeout, errCh)
	if err != nil {
		return err
	}

	if err := h.HandleCallback(ctx, name, params); err != nil {
		return err
	}

	engine, err := h.Adapter(name)
	if err != nil {
		return err
	}
	if engine.Descriptor().Capabilities.Supports(provider.CapabilityProfile) {
		if p, err := engine.Profile(ctx); err == nil && p.DisplayName != "" {
			cmd.Printf("Signed in to %s as %s.\n", name, p.DisplayName)
			return nil
		}
	}
	cmd.Printf("Signed in to %s.\n", name)
	return nil
}
