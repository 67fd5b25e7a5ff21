package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and workers files",
	RunE:  runInitConfig,
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	defaultConfig := `# Gridium Configuration

server:
  host: 0.0.0.0
  port: 4444
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

grid:
  workers_file: workers.yaml
  health_check_interval: 30s
  health_check_timeout: 5s
  session_timeout: 60s

logging:
  level: info
  format: json
  output: stdout

security:
  rate_limit: 100
  allowed_origins:
    - "*"
  auth_enabled: false
`

	defaultWorkers := `# Gridium workers
#
# Each entry points at one worker agent. The id must be stable and unique;
# it is the host identity inside the grid.

workers: []
#  - id: worker-01
#    url: http://worker-01:5555
#    token: ""
`

	if err := os.WriteFile("config.yaml", []byte(defaultConfig), 0644); err != nil {
		return err
	}
	fmt.Println("✓ Created config.yaml")

	if _, err := os.Stat("workers.yaml"); os.IsNotExist(err) {
		if err := os.WriteFile("workers.yaml", []byte(defaultWorkers), 0644); err != nil {
			return err
		}
		fmt.Println("✓ Created workers.yaml")
	}

	return nil
}
