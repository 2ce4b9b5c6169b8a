package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/cache"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/config"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/fetch"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/lateness"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/output"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/report"
	"github.com/spf13/cobra"
)

// reportCmd generates the lateness report for one course
var reportCmd = &cobra.Command{
	Use:   "report <course_id>",
	Short: "Generate the lateness spreadsheet and JSON snapshot for a course",
	Long: `Fetch students, assignments, and per-assignment submissions for the
given Canvas course, compute submission lateness, and write:

  <course>-results-<YYYYMMDD>.xlsx   two-sheet spreadsheet report
  <course>-results-<YYYYMMDD>.json   JSON snapshot of the aggregated data

Sheet 1 (Delta Sheet) has one three-column group per assignment with a
due date and at least one submission: due date, submitted date, and the
signed delta in seconds (positive = late, red; negative = early, blue).
Sheet 2 (Lateness Sheet) totals each student's lateness, counting only
late submissions.

With --use_cache, previously fetched collections are read from
.lateness/cache.db instead of the network. Submissions are cached per
assignment, so an interrupted fetch resumes where it left off.

Examples:
  lateness report 39
  lateness report 39 --use_cache --student_name name
  lateness report 39 -o reports/ --debug`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

// Report flags
var (
	reportStudentName string // --student_name: id or name
	reportUseCache    bool   // --use_cache
	reportDebug       bool   // --debug
	reportOutputDir   string // -o/--output-dir override
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportStudentName, "student_name", "id", "Label students by HUID or name (id|name)")
	reportCmd.Flags().BoolVar(&reportUseCache, "use_cache", false, "Use cached API data rather than fetching, if available")
	reportCmd.Flags().BoolVar(&reportDebug, "debug", false, "Log each API request")
	reportCmd.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "", "Directory for report files (default: config output_dir)")
}

func runReport(cmd *cobra.Command, args []string) error {
	courseID := args[0]

	displayField, err := report.ParseDisplayField(reportStudentName)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}

	// Token and base URL come from the environment (.env supported),
	// with the config file as the base URL fallback.
	env := config.LoadEnv()
	baseURL := env.BaseURL
	if baseURL == "" {
		baseURL = cfg.API.BaseURL
	}
	if baseURL == "" {
		return fmt.Errorf("no Canvas API URL configured: set CANVAS_API_URL or api.base_url in %s", config.ConfigFileName)
	}
	if env.Token == "" {
		return fmt.Errorf("no OAuth token configured: set OAUTH_TOKEN in the environment or a .env file")
	}

	latenessDir, err := config.EnsureConfigDir(cwd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(latenessDir)
	if err != nil {
		return err
	}
	defer closeLog()

	cacheDB, err := cache.Open(latenessDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cacheDB.Close()

	client := canvas.NewClient(baseURL, env.Token)
	client.PerPage = cfg.API.PerPage
	if reportDebug {
		client.Logf = log.Printf
	}

	fetcher := &fetch.Fetcher{API: client, Store: cacheDB, Logf: log.Printf}
	ctx := cmd.Context()

	students, err := fetcher.Students(ctx, courseID, reportUseCache)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		// Empty course is not an error; there is just nothing to report.
		log.Printf("no students found in course %s, not generating a report", courseID)
		return nil
	}

	assignments, err := fetcher.Assignments(ctx, courseID, reportUseCache)
	if err != nil {
		return err
	}

	assignmentIDs := make([]int64, len(assignments))
	for i, a := range assignments {
		assignmentIDs[i] = a.ID
	}
	submissions, err := fetcher.Submissions(ctx, courseID, assignmentIDs, reportUseCache)
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("fetched %d students, %d assignments, %d submission records",
			len(students), len(assignments), len(submissions))
	}

	result, err := lateness.Aggregate(students, assignments, submissions)
	if err != nil {
		return fmt.Errorf("aggregate lateness: %w", err)
	}

	// Timezone was validated when the config loaded.
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	rep := report.Assemble(result, report.Options{
		CourseID: courseID,
		Display:  displayField,
		Location: loc,
	})

	outDir := cfg.Report.OutputDir
	if reportOutputDir != "" {
		outDir = reportOutputDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := filepath.Join(outDir, fmt.Sprintf("%s-results-%s", courseID, time.Now().Format("20060102")))
	jsonPath := base + ".json"
	xlsxPath := base + ".xlsx"

	log.Printf("writing snapshot to %s", jsonPath)
	if err := output.WriteSnapshot(jsonPath, rep.Snapshot); err != nil {
		return err
	}
	log.Printf("writing spreadsheet to %s", xlsxPath)
	if err := output.WriteExcel(xlsxPath, rep); err != nil {
		return err
	}

	fmt.Printf("Report written: %s, %s\n", xlsxPath, jsonPath)
	return nil
}

// loadConfig loads the config from --config if given, otherwise by
// walking up from workDir.
func loadConfig(workDir string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(workDir)
}

// setupLogging tees the standard logger to stderr and
// .lateness/output.log so runs leave an inspectable trail.
func setupLogging(latenessDir string) (func(), error) {
	logPath := filepath.Join(latenessDir, "output.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	return func() {
		log.SetOutput(os.Stderr)
		logFile.Close()
	}, nil
}
