package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/xcash-project/xcash-temp-consensus/internal/config"
)

var (
	homeDir string
	runtime config.RuntimeConfig
)

var rootCmd = &cobra.Command{
	Use:   "xcashd-consensus",
	Short: "Temporary leader-based consensus tooling for the X-CASH daemon migration window",
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main and only needs to happen once.
func Execute() {
	handleInitError(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for config and pidfile (default is $HOME/.xcash-temp-consensus)")

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(derivePubkeyCmd())
}

// initConfig reads the on-disk config file and environment overrides,
// same double-unmarshal shape the teacher's root.go uses: viper picks
// up environment overrides and a best-effort structural parse, then an
// explicit yaml.Unmarshal over the raw file is authoritative for
// anything viper's key-matching missed.
func initConfig() {
	home := homeDir
	if home == "" {
		var err error
		home, err = config.DefaultHomeDir()
		handleInitError(err)
	}

	runtime = config.RuntimeConfig{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "config.yaml"),
	}

	viper.SetConfigFile(runtime.ConfigFile)
	viper.SetEnvPrefix("xcashtc")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("no config exists at default location:", err)
		return
	}
	_ = viper.Unmarshal(&runtime.Config)

	bz, err := os.ReadFile(viper.ConfigFileUsed())
	handleInitError(err)
	handleInitError(yaml.Unmarshal(bz, &runtime.Config))
}

func handleInitError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func pidFile() string {
	return filepath.Join(runtime.HomeDir, "xcashd-consensus.pid")
}
