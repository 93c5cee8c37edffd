package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Extract documentation metadata from Python modules and Ruby connectors",
	Long: `docgen walks a source tree and extracts documentation metadata:
module, class and function docstrings, imports and positional arguments
from Python files, and the title, actions, triggers and methods of Ruby
connector definitions.

The result is a JSON or YAML report for a documentation renderer.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initEnv loads a .env file from the working directory, if there is one,
// so DOCGEN_* settings can live next to the project. Variables already set
// in the environment win.
func initEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
}
