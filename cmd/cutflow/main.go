package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/CutFlow/internal/export"
	"github.com/piwi3910/CutFlow/internal/importer"
	"github.com/piwi3910/CutFlow/internal/job"
	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/optimizer"
	"github.com/piwi3910/CutFlow/internal/project"
	"github.com/piwi3910/CutFlow/internal/service"
)

const version = "1.0.0"

var (
	verbose    bool
	configPath string

	panelsPath string
	stockPath  string

	kerf        float64
	minTrim     float64
	factor      float64
	priority    string
	orientation string
	grain       bool

	outPDF     string
	outXLSX    string
	outLabels  string
	outJSON    string
	outProject string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cutflow",
	Short: "CutFlow - guillotine cut list optimizer",
	Long: `CutFlow computes guillotine cutting layouts for rectangular panels.

It reads a panel list and a stock list, searches cut layouts that minimize
waste (or cut count), and writes the result as PDF diagrams, spreadsheets,
printable labels or a project file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run an optimization over a panel list and a stock list",
	Long: `Imports panels and stock sheets, runs the optimizer and writes the
requested outputs.

Panel and stock files may be CSV (any common delimiter), .xlsx or, for
panels, DXF drawings. Columns are matched by header name; width, height
and count are required.

Example:
  cutflow optimize --panels panels.csv --stock stock.csv --pdf layout.pdf`,
	RunE: runOptimize,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CutFlow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cutflow %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(), "Path to the YAML config file")

	optimizeCmd.Flags().StringVar(&panelsPath, "panels", "", "Panel list file (csv, xlsx or dxf)")
	optimizeCmd.Flags().StringVar(&stockPath, "stock", "", "Stock sheet list file (csv or xlsx)")
	optimizeCmd.Flags().Float64Var(&kerf, "kerf", 0, "Blade thickness, overrides config")
	optimizeCmd.Flags().Float64Var(&minTrim, "min-trim", 0, "Smallest usable leftover strip, overrides config")
	optimizeCmd.Flags().Float64Var(&factor, "factor", 0, "Optimization factor 0..1, overrides config")
	optimizeCmd.Flags().StringVar(&priority, "priority", "", "Optimization priority: area or cuts")
	optimizeCmd.Flags().StringVar(&orientation, "orientation", "", "Cut orientation preference: both, horizontal or vertical")
	optimizeCmd.Flags().BoolVar(&grain, "grain", false, "Honor panel grain direction")
	optimizeCmd.Flags().StringVar(&outPDF, "pdf", "", "Write layout diagrams to this PDF file")
	optimizeCmd.Flags().StringVar(&outXLSX, "xlsx", "", "Write the cut list to this Excel file")
	optimizeCmd.Flags().StringVar(&outLabels, "labels", "", "Write printable QR labels to this PDF file")
	optimizeCmd.Flags().StringVar(&outJSON, "json", "", "Write the raw solution to this JSON file")
	optimizeCmd.Flags().StringVar(&outProject, "project", "", "Save request and solution as a project file")
	_ = optimizeCmd.MarkFlagRequired("panels")
	_ = optimizeCmd.MarkFlagRequired("stock")

	rootCmd.AddCommand(optimizeCmd, versionCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cliCfg, err := project.LoadCLIConfig(configPath)
	if err != nil {
		return err
	}
	if kerf > 0 {
		cliCfg.CutThickness = kerf
	}
	if minTrim > 0 {
		cliCfg.MinTrimDimension = minTrim
	}
	if factor > 0 {
		cliCfg.OptimizationFactor = factor
	}
	if priority != "" {
		cliCfg.Priority = priority
	}
	if orientation != "" {
		cliCfg.Orientation = orientation
	}
	if grain {
		cliCfg.ConsiderGrain = true
	}
	cfg, err := cliCfg.ToConfiguration()
	if err != nil {
		return err
	}

	panels, err := importPanels(panelsPath)
	if err != nil {
		return err
	}
	stock, err := importStock(stockPath)
	if err != nil {
		return err
	}
	logger.Info("imported request",
		zap.Int("panel_rows", len(panels)),
		zap.Int("stock_rows", len(stock)))

	req := &service.CalculationRequest{
		Panels:        panels,
		StockPanels:   stock,
		Configuration: cfg,
		Client:        job.ClientInfo{ID: "cutflow-cli"},
	}

	svc := service.New(logger)
	defer svc.Shutdown()

	taskID, code := svc.Submit(req)
	if code != model.StatusOk {
		return fmt.Errorf("submission rejected: %s", code)
	}
	logger.Info("task submitted", zap.String("task_id", taskID))

	status, err := waitForTask(svc, taskID)
	if err != nil {
		return err
	}
	if status.Solution == nil {
		return fmt.Errorf("task ended with status %s and no solution", status.Status)
	}
	logger.Info("task finished",
		zap.String("status", status.Status),
		zap.Int64("elapsed_ms", status.ElapsedMs))

	printSummary(status.Solution)
	return writeOutputs(status.Solution, panels, stock, cfg)
}

// waitForTask polls the task until it reaches a terminal state.
func waitForTask(svc *service.Service, taskID string) (*service.TaskStatus, error) {
	lastPercent := -1
	for {
		status, err := svc.Status(taskID)
		if err != nil {
			return nil, err
		}
		if status.PercentDone != lastPercent {
			lastPercent = status.PercentDone
			logger.Debug("progress", zap.Int("percent", status.PercentDone))
		}
		switch status.Status {
		case "Finished", "Stopped":
			return status, nil
		case "Terminated", "Error":
			return nil, fmt.Errorf("task %s ended with status %s", taskID, status.Status)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func importPanels(path string) ([]optimizer.PanelSpec, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path)
	default:
		result = importer.ImportCSV(path)
	}
	for _, w := range result.Warnings {
		logger.Warn("panel import", zap.String("warning", w))
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("panel import failed: %s", strings.Join(result.Errors, "; "))
	}
	if len(result.Panels) == 0 {
		return nil, fmt.Errorf("no panels found in %s", path)
	}
	return result.Panels, nil
}

func importStock(path string) ([]optimizer.StockSpec, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		result = importer.ImportExcel(path)
	default:
		result = importer.ImportCSV(path)
	}
	for _, w := range result.Warnings {
		logger.Warn("stock import", zap.String("warning", w))
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("stock import failed: %s", strings.Join(result.Errors, "; "))
	}
	if len(result.Panels) == 0 {
		return nil, fmt.Errorf("no stock sheets found in %s", path)
	}

	stock := make([]optimizer.StockSpec, len(result.Panels))
	for i, p := range result.Panels {
		stock[i] = optimizer.StockSpec{
			Width:    p.Width,
			Height:   p.Height,
			Count:    p.Count,
			Label:    p.Label,
			Material: p.Material,
		}
	}
	return stock, nil
}

func printSummary(sol *service.Solution) {
	for _, mat := range sol.Materials {
		name := mat.Material
		if name == "" {
			name = "Default"
		}
		fmt.Printf("%s: %d sheets, %.1f used, %.1f wasted (%.1f%% utilization)\n",
			name, len(mat.Sheets), mat.UsedArea, mat.WastedArea, mat.Utilization*100)
		if len(mat.NoFit) > 0 {
			fmt.Printf("  %d panels did not fit\n", len(mat.NoFit))
		}
	}
	if sol.TrimInfluenced {
		fmt.Println("Note: the minimum trim setting rejected at least one placement.")
	}
}

func writeOutputs(sol *service.Solution, panels []optimizer.PanelSpec, stock []optimizer.StockSpec, cfg model.Configuration) error {
	if outPDF != "" {
		if err := export.PDF(outPDF, sol); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		logger.Info("wrote pdf", zap.String("path", outPDF))
	}
	if outXLSX != "" {
		if err := export.XLSX(outXLSX, sol); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		logger.Info("wrote xlsx", zap.String("path", outXLSX))
	}
	if outLabels != "" {
		if err := export.Labels(outLabels, sol); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		logger.Info("wrote labels", zap.String("path", outLabels))
	}
	if outJSON != "" {
		data, err := json.MarshalIndent(sol, "", "  ")
		if err != nil {
			return fmt.Errorf("json export: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("json export: %w", err)
		}
		logger.Info("wrote json", zap.String("path", outJSON))
	}
	if outProject != "" {
		p := project.Project{
			Name:        strings.TrimSuffix(filepath.Base(outProject), filepath.Ext(outProject)),
			Panels:      panels,
			StockPanels: stock,
			Config:      cfg,
			Solution:    sol,
		}
		if err := project.Save(outProject, p); err != nil {
			return fmt.Errorf("project save: %w", err)
		}
		logger.Info("saved project", zap.String("path", outProject))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
