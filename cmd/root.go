package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"smellcheck/internal/analyzer"
	"smellcheck/internal/ast"
	"smellcheck/internal/config"
	"smellcheck/internal/watcher"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	verboseFlag        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smellcheck [files or directories]",
	Short: "A code smell detector for pre-parsed Ruby syntax trees",
	Long: `smellcheck walks syntax trees serialized as S-expressions (.sexp files)
and reports design smells: duplicate method calls, feature envy, instance
variable assumptions and classes with too many instance variables.

Examples:
  smellcheck .                             # Analyze current directory
  smellcheck user.sexp order.sexp          # Analyze specific files
  smellcheck --format=json .               # Output results in JSON format
  smellcheck --config=.smellcheck.yml .    # Use custom config
  smellcheck --watch .                     # Re-analyze on every change
  smellcheck --generate-config             # Generate sample config file`,
	Run: runAnalysis,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch mode for development")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output and debug logging")
}

func runAnalysis(cmd *cobra.Command, args []string) {

	if generateConfigFlag {
		generateConfig()
		return
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if verboseFlag {
		cfg.Output.Verbose = true
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		color.Red("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if len(args) == 0 {
		args = []string{"."}
	}

	treeFiles := collectFiles(args, cfg)
	if len(treeFiles) == 0 {
		color.Yellow("No %s files found to analyze\n", ast.FileExtension)
		return
	}

	analyzerEngine := analyzer.NewAnalyzerWithConfig(cfg)
	analyzerEngine.SetLogger(logger)
	reportGen := analyzer.NewReportGeneratorWithConfig(cfg)

	if cfg.Output.Verbose {
		color.Cyan("Analyzing %d files with %d detectors: %s\n", len(treeFiles),
			analyzerEngine.GetDetectorCount(), strings.Join(analyzerEngine.GetDetectorNames(), ", "))
		if configFlag != "" {
			color.Cyan("Using configuration: %s\n", configFlag)
		}
		fmt.Println()
	} else if cfg.Output.Format != "json" {
		color.Cyan("Analyzing %d files...\n\n", len(treeFiles))
	}

	result, err := analyzerEngine.AnalyzeFiles(treeFiles)
	if err != nil {
		color.Red("Analysis failed: %v\n", err)
		return
	}

	emitReport(reportGen.Generate(result), cfg)

	if watchFlag {
		watch(args, cfg, analyzerEngine, reportGen, logger)
		return
	}

	if result.QualityScore < cfg.Analysis.ScoreThresholds.Fair {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zc.Encoding = "console"
	return zc.Build()
}

func emitReport(report string, cfg *config.Config) {
	if cfg.Output.OutputFile != "" {
		if err := writeReportToFile(report, cfg.Output.OutputFile); err != nil {
			color.Red("Failed to write report to file: %v\n", err)
		} else {
			color.Green("Report saved to: %s\n", cfg.Output.OutputFile)
		}
		return
	}
	fmt.Print(report)
}

// watch re-analyzes changed files until interrupted.
func watch(paths []string, cfg *config.Config, engine *analyzer.Analyzer, reportGen *analyzer.ReportGenerator, logger *zap.Logger) {
	fw, err := watcher.NewFileWatcher(cfg, logger)
	if err != nil {
		color.Red("Failed to start watch mode: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	handler := func(changed []string) error {
		var existing []string
		for _, path := range changed {
			if _, err := os.Stat(path); err == nil {
				existing = append(existing, path)
			}
		}
		if len(existing) == 0 {
			return nil
		}
		color.Cyan("\nChanged: %s\n\n", strings.Join(existing, ", "))
		result, err := engine.AnalyzeFiles(existing)
		if err != nil {
			return fmt.Errorf("re-analysis failed: %w", err)
		}
		emitReport(reportGen.Generate(result), cfg)
		return nil
	}

	if err := fw.Watch(paths, handler); err != nil {
		color.Red("Failed to start watch mode: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	color.Cyan("Watching %d directories for changes (Ctrl+C to stop)...\n", len(fw.GetWatchedPaths()))
	<-ctx.Done()
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(report), 0644)
}

func generateConfig() {
	configPath := ".smellcheck.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("Generated sample configuration file: %s\n", configPath)
	color.Cyan("Edit this file to customize smellcheck behavior\n")
	color.Cyan("Run 'smellcheck --config=%s .' to use it\n", configPath)
}

func collectFiles(args []string, cfg *config.Config) []string {
	var files []string
	for _, arg := range args {
		found, err := collectTreeFiles(arg, cfg)
		if err != nil {
			color.Red("Error collecting files from %s: %v\n", arg, err)
			continue
		}
		files = append(files, found...)
	}
	return files
}

// collectTreeFiles recursively finds all serialized syntax trees in the given path
func collectTreeFiles(path string, cfg *config.Config) ([]string, error) {
	var treeFiles []string

	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if filePath != path && (name == "vendor" || name == ".git" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(filePath, ast.FileExtension) && !config.IsExcluded(cfg.Files.Exclude, filePath) {
			treeFiles = append(treeFiles, filePath)
		}

		return nil
	})

	return treeFiles, err
}
