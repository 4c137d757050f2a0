// Command cvscan analyzes a cyclic-voltammetry scan and prints the detected
// peaks, the baseline outcome, and the scan-level features.
//
// Usage:
//
//	cvscan [flags] [file.csv]
//
// The input is a CSV file with a potential column and a current column; a
// leading header row is skipped automatically. Without a file, -demo runs
// the analysis on a synthetic scan.
//
// Examples:
//
//	cvscan scan.csv
//	cvscan -analyte dopamine -confidence 60 scan.csv
//	cvscan -rejected scan.csv
//	cvscan -demo
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
	"github.com/cwbudde/algo-voltammetry/measure/voltammetry"
)

func main() {
	analyteName := flag.String("analyte", "", "analyte profile name (see -profiles)")
	confidence := flag.Float64("confidence", 0, "peak acceptance bar in (0, 100], 0 keeps the default")
	smoothing := flag.Int("smoothing", 0, "odd smoothing window in samples, 0 keeps the default")
	noSmoothing := flag.Bool("no-smoothing", false, "disable noise reduction")
	rejected := flag.Bool("rejected", false, "also print rejected candidates with reasons")
	demo := flag.Bool("demo", false, "analyze a synthetic scan instead of a file")
	profiles := flag.Bool("profiles", false, "list known analyte profiles")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cvscan [flags] [file.csv]\n\n")
		fmt.Fprintf(os.Stderr, "Analyzes a cyclic-voltammetry scan (potential,current CSV).\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cvscan scan.csv\n")
		fmt.Fprintf(os.Stderr, "  cvscan -analyte dopamine scan.csv\n")
		fmt.Fprintf(os.Stderr, "  cvscan -demo\n")
	}
	flag.Parse()

	if *profiles {
		printProfiles()
		return
	}

	s, err := loadScan(flag.Args(), *demo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var opts []voltammetry.Option
	if *analyteName != "" {
		opts = append(opts, voltammetry.WithAnalyte(*analyteName))
	}
	if *confidence > 0 {
		opts = append(opts, voltammetry.WithConfidenceThreshold(*confidence))
	}
	if *smoothing > 0 {
		opts = append(opts, voltammetry.WithSmoothingWindow(*smoothing))
	}
	if *noSmoothing {
		opts = append(opts, voltammetry.WithNoiseReduction(false))
	}

	res, err := voltammetry.NewAnalyzer(opts...).AnalyzeScan(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printResult(res, *rejected)
}

func printProfiles() {
	table := voltammetry.DefaultConfig().Profiles

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Analyte\tOxidation [V]\tReduction [V]\tMin Height\n")

	for _, name := range table.Names() {
		p, _ := table.Lookup(name)
		fmt.Fprintf(tw, "%s\t%.2f..%.2f\t%.2f..%.2f\t%.2g\n",
			p.Name, p.Oxidation.Min, p.Oxidation.Max, p.Reduction.Min, p.Reduction.Max, p.MinHeight)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func loadScan(args []string, demo bool) (scan.Scan, error) {
	switch {
	case demo:
		return demoScan()
	case len(args) == 1:
		return readCSV(args[0])
	case len(args) == 0:
		return scan.Scan{}, fmt.Errorf("no input file (or use -demo)")
	default:
		return scan.Scan{}, fmt.Errorf("expected one input file, got %d", len(args))
	}
}

func demoScan() (scan.Scan, error) {
	gen := scan.NewGenerator(scan.WithPoints(800), scan.WithSeed(42))

	return gen.Scan(0.1, 0.01,
		scan.Bump{Center: 0.25, Height: 1.2, Width: 0.04, Direction: scan.Forward},
		scan.Bump{Center: 0.18, Height: -0.9, Width: 0.05, Direction: scan.Reverse},
	)
}

// readCSV parses a two-column potential,current file. Rows whose first cell
// does not parse as a number are skipped, which covers header rows and
// instrument comment lines.
func readCSV(path string) (scan.Scan, error) {
	f, err := os.Open(path)
	if err != nil {
		return scan.Scan{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'

	records, err := r.ReadAll()
	if err != nil {
		return scan.Scan{}, fmt.Errorf("%s: %w", path, err)
	}

	s := scan.Scan{SampleID: path}

	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}

		p, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			continue
		}

		c, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			continue
		}

		s.Potential = append(s.Potential, p)
		s.Current = append(s.Current, c)
	}

	if len(s.Potential) == 0 {
		return scan.Scan{}, fmt.Errorf("%s: no numeric potential,current rows", path)
	}

	return s, nil
}

func printResult(res voltammetry.Result, showRejected bool) {
	fmt.Printf("samples: %d (turn at %d)\n", res.Scan.Len(), res.Segmentation.Turn)
	fmt.Printf("noise: %.4g  SNR: %.1f\n", res.Thresholds.Noise, res.Thresholds.SNR)
	fmt.Printf("baseline: forward %s, reverse %s\n\n",
		res.Baseline.Forward.Status, res.Baseline.Reverse.Status)

	if !res.HasPeaks() {
		fmt.Println("no peaks detected")
	} else {
		printPeaks("Peaks:", res.Peaks)
	}

	if showRejected && len(res.Rejected) > 0 {
		fmt.Println()
		printPeaks("Rejected:", res.Rejected)

		for _, p := range res.Rejected {
			fmt.Printf("  %.3f V: %s\n", p.Potential, strings.Join(p.Reasons, "; "))
		}
	}

	if len(res.Conflicts) > 0 {
		fmt.Println()

		for _, c := range res.Conflicts {
			fmt.Printf("conflict: baseline overlaps %d samples of the peak at %.3f V (%s)\n",
				c.Overlap, c.Peak.Potential, c.Severity)
		}
	}

	fs := res.Features.Scan
	fmt.Printf("\nareas: oxidation %.4g, reduction %.4g", fs.OxidationArea, fs.ReductionArea)

	if fs.PeakSeparation > 0 {
		fmt.Printf("  separation: %.3f V", fs.PeakSeparation)
	}

	fmt.Println()
}

func printPeaks(title string, list []peaks.ValidatedPeak) {
	fmt.Println(title)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Kind\tPotential [V]\tHeight\tSNR\tConfidence\tSource\n")

	for _, p := range list {
		fmt.Fprintf(tw, "  %s\t%.3f\t%.4g\t%.1f\t%.0f\t%s\n",
			p.Kind, p.Potential, p.Height, p.SNR, p.Confidence, p.Source)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
