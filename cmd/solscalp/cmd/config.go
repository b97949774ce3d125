package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"solscalp/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default configuration as YAML",
	Long: `Print a complete default configuration to stdout, or write it to a
file with --write. Edit the result and pass it to 'solscalp run'.`,
	RunE: runConfig,
}

var configWritePath string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configWritePath, "write", "w", "", "write the default config to this path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if configWritePath != "" {
		if _, err := os.Stat(configWritePath); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", configWritePath)
		}
		if err := cfg.Save(configWritePath); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", configWritePath)
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
