// Package hub is the multi-provider facade: one configuration listing the
// enabled providers, one shared credential store, and lazily built flow
// engines addressed by provider name.
package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/idconnect/idconnect/pkg/dispatch"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/flow"
	"github.com/idconnect/idconnect/pkg/provider"
	"github.com/idconnect/idconnect/pkg/provider/catalog"
	"github.com/idconnect/idconnect/pkg/store"
)

// ProviderSettings is the per-provider block of a hub configuration.
type ProviderSettings struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`

	// Scope overrides the provider's default scope when set.
	Scope string `yaml:"scope,omitempty" mapstructure:"scope"`
}

// Config configures a Hub.
type Config struct {
	// CallbackURL is the shared redirect URI registered with every
	// provider.
	CallbackURL string `yaml:"callback_url" mapstructure:"callback_url"`

	// Providers maps catalog provider names to their settings.
	Providers map[string]ProviderSettings `yaml:"providers" mapstructure:"providers"`
}

// Hub hands out flow engines for configured providers.
type Hub struct {
	config     Config
	store      store.Store
	dispatcher *dispatch.Dispatcher
	redirector flow.Redirector

	mu      sync.Mutex
	engines map[string]*flow.Engine
}

// Option configures a Hub.
type Option func(*Hub)

// WithDispatcher sets the dispatcher shared by all engines.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(h *Hub) {
		h.dispatcher = d
	}
}

// WithRedirector sets the redirect strategy shared by all engines.
func WithRedirector(r flow.Redirector) Option {
	return func(h *Hub) {
		h.redirector = r
	}
}

// New builds a Hub over a shared credential store.
func New(cfg Config, st store.Store, opts ...Option) (*Hub, error) {
	if cfg.CallbackURL == "" {
		return nil, errors.NewConfigurationError("a callback URL is required", nil)
	}
	if st == nil {
		return nil, errors.NewConfigurationError("a credential store is required", nil)
	}

	h := &Hub{
		config:  cfg,
		store:   st,
		engines: make(map[string]*flow.Engine),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Adapter returns the flow engine for a configured provider. Unknown and
// disabled providers are configuration errors.
func (h *Hub) Adapter(name string) (*flow.Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if engine, ok := h.engines[name]; ok {
		return engine, nil
	}

	settings, ok := h.config.Providers[name]
	if !ok {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("provider %q is not configured", name), nil)
	}
	if !settings.Enabled {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("provider %q is disabled", name), nil)
	}

	desc, err := catalog.New(name, catalog.Credentials{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		CallbackURL:  h.config.CallbackURL,
	})
	if err != nil {
		return nil, err
	}
	if settings.Scope != "" {
		desc.Config.Scope = settings.Scope
	}

	engine, err := h.newEngine(desc)
	if err != nil {
		return nil, err
	}
	h.engines[name] = engine
	return engine, nil
}

// RegisterDescriptor wires a non-catalog provider into the hub under its
// configured id, for OIDC issuers and custom descriptors.
func (h *Hub) RegisterDescriptor(desc provider.Descriptor) error {
	engine, err := h.newEngine(desc)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engines[desc.Config.ID] = engine
	return nil
}

func (h *Hub) newEngine(desc provider.Descriptor) (*flow.Engine, error) {
	var opts []flow.Option
	if h.dispatcher != nil {
		opts = append(opts, flow.WithDispatcher(h.dispatcher))
	}
	if h.redirector != nil {
		opts = append(opts, flow.WithRedirector(h.redirector))
	}
	return flow.NewEngine(desc, h.store, opts...)
}

// Authenticate starts (or short-circuits) the authorization flow for one
// provider and returns the authorize URL when a redirect was issued.
func (h *Hub) Authenticate(ctx context.Context, name string) (string, error) {
	engine, err := h.Adapter(name)
	if err != nil {
		return "", err
	}
	return engine.Authenticate(ctx)
}

// HandleCallback completes the flow for one provider from the redirect-back
// query parameters.
func (h *Hub) HandleCallback(ctx context.Context, name string, params map[string]string) error {
	engine, err := h.Adapter(name)
	if err != nil {
		return err
	}
	return engine.HandleCallback(ctx, params)
}

// IsConnectedWith reports whether the named provider holds a valid session.
func (h *Hub) IsConnectedWith(ctx context.Context, name string) (bool, error) {
	engine, err := h.Adapter(name)
	if err != nil {
		return false, err
	}
	return engine.IsConnected(ctx)
}

// Providers lists the enabled provider names plus any registered
// descriptors.
func (h *Hub) Providers() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]bool)
	var names []string
	for name, settings := range h.config.Providers {
		if settings.Enabled {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range h.engines {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// ConnectedProviders lists the enabled providers that currently hold a
// valid session.
func (h *Hub) ConnectedProviders(ctx context.Context) ([]string, error) {
	var connected []string
	for _, name := range h.Providers() {
		ok, err := h.IsConnectedWith(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			connected = append(connected, name)
		}
	}
	return connected, nil
}

// DisconnectAll clears the stored state of every enabled provider.
func (h *Hub) DisconnectAll(ctx context.Context) error {
	for _, name := range h.Providers() {
		engine, err := h.Adapter(name)
		if err != nil {
			return err
		}
		if err := engine.Disconnect(ctx); err != nil {
			return err
		}
	}
	return nil
}
