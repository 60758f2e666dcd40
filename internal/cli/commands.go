// Package cli implements the agentbridge command line interface. It provides
// commands to run the bridge server, hold an interactive chat with an agent,
// and manage agent sessions from the terminal.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agentbridge [command] [flags]",
	Short: "Agentbridge CLI - bridge terminal and web clients to Agentforce agents",
	Long: `Agentbridge connects chat clients to Salesforce Agentforce agents. It
resolves credentials either directly against the tenant's OAuth endpoint or
through a Heroku AppLink broker, manages agent sessions, and streams agent
replies.

Examples:
  # Run the bridge HTTP server
  agentbridge serve

  # Chat with the default agent from the terminal
  agentbridge chat

  # Open and close a session explicitly
  agentbridge session start
  agentbridge session end`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	// Add commands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// GetDefaultConfigPath returns the default path for the config file.
// It uses the OS-specific config directory (e.g., ~/.config/agentbridge on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "agentbridge", "config.toml"), nil
}

// preRunHandlePersistents loads the configuration before command execution.
// The version command works without a config file.
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	if cmd.Name() == "version" {
		return
	}

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Agentbridge config file not found at %s. Create one or pass --config.\n", configFile)
		} else {
			fmt.Printf("%s\n", err.Error())
		}
		os.Exit(1)
	}
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of agentbridge",
		Run: func(cmd *cobra.Command, args []string) {
			configPath := configFile
			if configPath == "" {
				var err error
				configPath, err = GetDefaultConfigPath()
				if err != nil {
					configPath = "unknown"
				}
			}

			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				}
				printJSON(kv)
			} else {
				cmd.Printf("agentbridge %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON prints the given map as JSON to stdout
func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
