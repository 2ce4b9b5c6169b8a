package cmd

import (
	"fmt"
	"os"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/cache"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/config"
	"github.com/spf13/cobra"
)

// cacheCmd is the parent command for cache inspection and maintenance
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local API cache",
	Long: `Inspect or clear the cached Canvas API collections in
.lateness/cache.db.

Cached entries never expire on their own; clear them when the course
data on Canvas has moved on.

Examples:
  lateness cache stats
  lateness cache clear
  lateness cache clear --course 39`,
}

// cacheStatsCmd prints cache entry counts
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached collection counts",
	RunE:  runCacheStats,
}

// cacheClearCmd removes cached collections
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached collections",
	RunE:  runCacheClear,
}

var cacheClearCourse string

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().StringVar(&cacheClearCourse, "course", "", "Clear only this course's entries")
}

func openCache() (*cache.Cache, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	dir, err := config.EnsureConfigDir(cwd)
	if err != nil {
		return nil, err
	}
	return cache.Open(dir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cacheDB, err := openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cacheDB.Close()

	stats, err := cacheDB.GetStats()
	if err != nil {
		return fmt.Errorf("get cache stats: %w", err)
	}

	fmt.Printf("Cache: %s\n", cacheDB.Path())
	fmt.Printf("  Courses:             %d\n", stats.Courses)
	fmt.Printf("  Student collections: %d\n", stats.Students)
	fmt.Printf("  Assignment colls:    %d\n", stats.Assignments)
	fmt.Printf("  Submission colls:    %d (one per assignment)\n", stats.Submissions)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cacheDB, err := openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cacheDB.Close()

	if cacheClearCourse != "" {
		if err := cacheDB.ClearCourse(cacheClearCourse); err != nil {
			return err
		}
		fmt.Printf("Cleared cached collections for course %s\n", cacheClearCourse)
		return nil
	}

	if err := cacheDB.Clear(); err != nil {
		return err
	}
	fmt.Println("Cleared all cached collections")
	return nil
}
