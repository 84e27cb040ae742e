package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/career-simulator/api"
	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/report"
	"github.com/warp/career-simulator/roster"
	"github.com/warp/career-simulator/scenario"
)

// runOptions are the inputs of one CLI simulation.
type runOptions struct {
	scenarioPath string
	preset       string
	rosterPath   string
	asOf         string
	overrides    []string
	pdfPath      string
	xlsxPath     string
	asJSON       bool
	title        string
	leftLogo     string
	rightLogo    string
}

func runCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [scenario-file]",
		Short: "Simulate a scenario and print the cost tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.scenarioPath = args[0]
			}
			if opts.title == "" {
				opts.title = a.cfg.Report.Title
			}
			if opts.leftLogo == "" {
				opts.leftLogo = a.cfg.Report.LeftLogo
			}
			if opts.rightLogo == "" {
				opts.rightLogo = a.cfg.Report.RightLogo
			}
			return runSimulation(cmd.OutOrStdout(), a.logger, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.preset, "preset", "", "built-in scenario id instead of a file")
	f.StringVarP(&opts.rosterPath, "roster", "r", "", "employee roster (.xlsx or .csv)")
	f.StringVar(&opts.asOf, "as-of", "", "tenure reference date YYYY-MM-DD (default today)")
	f.StringArrayVarP(&opts.overrides, "override", "o", nil, "headcount override GRADE:LEVEL=COUNT, repeatable")
	f.StringVar(&opts.pdfPath, "pdf", "", "write the PDF report to this path")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "write the workbook to this path")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON instead of tables")
	f.StringVar(&opts.title, "title", "", "PDF title")
	f.StringVar(&opts.leftLogo, "logo-left", "", "PDF left header logo")
	f.StringVar(&opts.rightLogo, "logo-right", "", "PDF right header logo")
	return cmd
}

func runSimulation(out io.Writer, logger *slog.Logger, opts runOptions) error {
	sc, err := loadScenario(opts.scenarioPath, opts.preset)
	if err != nil {
		return err
	}

	cfg, err := sc.Config()
	if err != nil {
		return err
	}

	overrides := sc.HeadcountOverrides()
	for _, raw := range opts.overrides {
		cell, count, err := parseOverride(raw)
		if err != nil {
			return err
		}
		if overrides == nil {
			overrides = career.Overrides{}
		}
		overrides[cell] = count
	}

	var asOf time.Time
	if opts.asOf != "" {
		asOf, err = time.Parse("2006-01-02", opts.asOf)
		if err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
	}

	var rows []career.RosterRow
	if opts.rosterPath != "" {
		rows, err = roster.Open(opts.rosterPath)
		if err != nil {
			return err
		}
	}

	res, err := career.Simulate(cfg, career.Input{
		Roster:    rows,
		Overrides: overrides,
		AsOf:      asOf,
		ParseDate: roster.ParseDate,
	})
	if err != nil {
		return err
	}
	logger.Debug("simulation finished",
		slog.String("scenario", sc.ID),
		slog.Int("employees", len(res.Roster.Employees)),
		slog.Int("excluded", len(res.Roster.Excluded)),
		slog.String("grand_total", res.Report.GrandTotal.StringFixed(2)),
	)

	if opts.pdfPath != "" {
		title := opts.title
		if title == "" && sc.Name != "" {
			title = report.DefaultTitle + ": " + sc.Name
		}
		err := writeFile(opts.pdfPath, func(w io.Writer) error {
			return report.WritePDF(w, res.Report, report.PDFOptions{
				Title:     title,
				LeftLogo:  opts.leftLogo,
				RightLogo: opts.rightLogo,
			})
		})
		if err != nil {
			return fmt.Errorf("writing PDF: %w", err)
		}
		logger.Info("pdf written", slog.String("path", opts.pdfPath))
	}
	if opts.xlsxPath != "" {
		err := writeFile(opts.xlsxPath, func(w io.Writer) error {
			return report.WriteXLSX(w, res.Report)
		})
		if err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		logger.Info("workbook written", slog.String("path", opts.xlsxPath))
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.NewReportDTO(res.Report))
	}
	printReport(out, sc, res.Report)
	return nil
}

func loadScenario(path, preset string) (*scenario.Scenario, error) {
	switch {
	case path != "" && preset != "":
		return nil, errors.New("give either a scenario file or --preset, not both")
	case preset != "":
		sc, ok := scenario.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		return &sc, nil
	case path != "":
		return scenario.Load(path)
	default:
		return nil, errors.New("a scenario file or --preset is required")
	}
}

// parseOverride reads GRADE:LEVEL=COUNT, e.g. "2:CD15=4".
func parseOverride(raw string) (career.Cell, int, error) {
	cellPart, countPart, ok := strings.Cut(raw, "=")
	gradePart, levelPart, ok2 := strings.Cut(cellPart, ":")
	if !ok || !ok2 {
		return career.Cell{}, 0, fmt.Errorf("override %q: want GRADE:LEVEL=COUNT", raw)
	}

	grade, err := strconv.Atoi(strings.TrimSpace(gradePart))
	if err != nil {
		return career.Cell{}, 0, fmt.Errorf("override %q: grade: %w", raw, err)
	}
	level, err := career.ParseLevel(levelPart)
	if err != nil {
		return career.Cell{}, 0, fmt.Errorf("override %q: %w", raw, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil {
		return career.Cell{}, 0, fmt.Errorf("override %q: count: %w", raw, err)
	}
	return career.Cell{Grade: career.Grade(grade), Level: level}, count, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// VALIDATE AND PRESETS
// =============================================================================

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario-file>",
		Short: "Check a scenario file and list every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

func runValidate(out io.Writer, path string) error {
	sc, err := scenario.Load(path)
	if err == nil {
		_, err = sc.Config()
	}
	if err != nil {
		if !career.IsConfigError(err) {
			return err
		}
		printProblems(out, err)
		return fmt.Errorf("%s is not a valid scenario", path)
	}

	fmt.Fprintf(out, "Result: VALID (%s, %d grades, %s)\n", displayName(sc), sc.Grades, sc.Allocation.Mode)
	return nil
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [id]",
		Short: "List the built-in scenarios, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, p := range scenario.Presets() {
					fmt.Fprintf(out, "%-20s %s\n", p.ID, p.Name)
				}
				return nil
			}

			sc, ok := scenario.Preset(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			data, err := sc.Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}
