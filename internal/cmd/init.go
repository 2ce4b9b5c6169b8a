package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/cache"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .lateness directory and default config",
	Long: `Initialize the .lateness directory in the current directory, write the
default config.yaml, and create the cache database.

The OAuth token is not stored in the config: set OAUTH_TOKEN in the
environment or in a .env file next to where you run the tool.

Examples:
  lateness init`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	latenessDir := filepath.Join(cwd, config.ConfigDirName)
	cfgPath := filepath.Join(latenessDir, config.ConfigFileName)

	if _, err := os.Stat(cfgPath); err == nil {
		relPath, _ := filepath.Rel(cwd, cfgPath)
		fmt.Printf("Already initialized at %s\n", relPath)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	written, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}

	// Open the cache once so the schema exists before the first report run.
	cacheDB, err := cache.Open(latenessDir)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer cacheDB.Close()

	relPath, _ := filepath.Rel(cwd, written)
	fmt.Printf("Initialized config at %s\n", relPath)
	return nil
}
