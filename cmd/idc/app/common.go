package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idconnect/idconnect/pkg/hub"
	"github.com/idconnect/idconnect/pkg/store"
)

const appDirName = "idconnect"

// loadConfig reads the hub configuration via viper: the --config flag when
// given, otherwise config.yaml in the user config directory. IDC_*
// environment variables override file values.
func loadConfig(cmd *cobra.Command) (hub.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IDC")
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return hub.Config{}, fmt.Errorf("failed to locate user config directory: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(configDir, appDirName))
	}

	if err := v.ReadInConfig(); err != nil {
		return hub.Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg hub.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return hub.Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the file-backed credential store: the --store flag when
// given, otherwise tokens.json next to the configuration.
func openStore(cmd *cobra.Command) (store.Store, error) {
	path, _ := cmd.Flags().GetString("store")
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user config directory: %w", err)
		}
		path = filepath.Join(configDir, appDirName, "tokens.json")
	}
	return store.NewFileStore(path), nil
}

// loadHub wires the configuration and credential store into a hub.
func loadHub(cmd *cobra.Command, opts ...hub.Option) (*hub.Hub, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	return hub.New(cfg, st, opts...)
}
