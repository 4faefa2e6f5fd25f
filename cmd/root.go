package cmd

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/indicesp/indicesp/internal/utils"
	"github.com/indicesp/indicesp/pkg/catalog"
)

var cfgFile string

const (
	LOGO = `
	 _____           _ _               ____  ____
	|_   _|_ __   __| (_) ___ ___     / ___||  _ \
	  | | | '_ \ / _' | |/ __/ _ \    \___ \| |_) |
	  | | | | | | (_| | | (_|  __/     ___) |  __/
	 |___||_| |_|\__,_|_|\___\___|    |____/|_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "indicesp",
	Short: "Crowdsourced supermarket inflation index for São Paulo.",
	Long: LOGO + `indicesp collects supermarket prices sent by the community, queues them for
moderation and serves the Índice SP dashboard.

Prices may carry a Wayback Machine snapshot as evidence. Snapshots are only
accepted when taken on the last Saturday of the month.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.indicesp.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy for outgoing requests (Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// setDefaults registers every key so that a freshly written config file
// lists them all.
func setDefaults() {
	def := catalog.DefaultConfig()
	supermarkets := make([]map[string]interface{}, 0, len(def.Supermarkets))
	for _, s := range def.Supermarkets {
		supermarkets = append(supermarkets, map[string]interface{}{"name": s.Name, "domains": s.Domains})
	}
	viper.SetDefault("catalog.supermarkets", supermarkets)
	viper.SetDefault("catalog.products", def.Products)
	viper.SetDefault("catalog.units", def.Units)
	viper.SetDefault("catalog.brands", def.Brands)

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.domain", "localhost")
	viper.SetDefault("server.allowed_origins", []string{})

	viper.SetDefault("wayback.endpoint", "https://archive.org/wayback/available")
	viper.SetDefault("wayback.retries", 3)
	viper.SetDefault("wayback.timeout", "30s")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)

	if err := utils.LoadDotEnv(".env"); err != nil {
		utils.Log.Warnf("Could not load .env: %v", err)
	}

	home, err := homedir.Dir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.SetConfigName(".indicesp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("INDICESP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			writeDefaultConfig(utils.ConfigPath(home, cfgFile))
		} else {
			utils.Log.Warnf("Could not read config file: %v", err)
		}
	}
}

// writeDefaultConfig writes the defaults to path unless another process
// gets there first.
func writeDefaultConfig(path string) {
	lock, err := utils.NewFileLock(path)
	if err != nil {
		utils.Log.Warnf("Could not lock %s: %v", path, err)
		return
	}
	if err := lock.Lock(); err != nil {
		utils.Log.Warnf("%v", err)
		return
	}
	defer lock.Unlock()

	if err := viper.SafeWriteConfigAs(path); err != nil {
		if _, exists := err.(viper.ConfigFileAlreadyExistsError); !exists {
			utils.Log.Warnf("Error creating config file: %s", err)
		}
		return
	}
	utils.Log.Debugf("Wrote default config to %s", path)
}

// loadCatalog decodes the catalog section of the config.
func loadCatalog() (*catalog.Catalog, error) {
	var cfg catalog.Config
	if err := viper.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, fmt.Errorf("invalid catalog config: %w", err)
	}
	return catalog.New(cfg), nil
}
