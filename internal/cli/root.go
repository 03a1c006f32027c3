package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskpanel/internal/config"
	"diskpanel/internal/logging"
)

var (
	cfgFile string
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "diskpanel",
	Short: "Disk volume usage dashboard",
	Long:  `diskpanel reports per-volume disk usage as a web dashboard or a terminal report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetDefaults(viper.GetViper())
		return logging.Setup(viper.GetString("log.level"), viper.GetString("log.format"), os.Stderr)
	},
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.diskpanel.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("datasource", config.ModeAuto, "Volume source (auto, wmic, partitions, sample)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("datasource.mode", rootCmd.PersistentFlags().Lookup("datasource"))

	// DISKPANEL_SERVER_ADDRESS, DISKPANEL_DATASOURCE_MODE, ...
	viper.SetEnvPrefix("DISKPANEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".diskpanel")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the effective configuration from flags, env and file
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
