package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"harmonic-analysis/analysis"
	"harmonic-analysis/calibration"
	"harmonic-analysis/cmd/harmonicanalyze/tui"
	"harmonic-analysis/ingest/midi"
	"harmonic-analysis/internal/config"
	"harmonic-analysis/internal/obs"
	"harmonic-analysis/pattern"
)

func analyzeCmd() *cobra.Command {
	var keyHint, profile, midiPath string
	var bestCover, interactive bool

	cmd := &cobra.Command{
		Use:   "analyze [chords...]",
		Short: "Analyze a chord progression and print its ranked interpretations",
		Args: func(cmd *cobra.Command, args []string) error {
			midiPath, _ := cmd.Flags().GetString("midi")
			if midiPath == "" && len(args) == 0 {
				return fmt.Errorf("requires chord-symbol arguments or --midi")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			patternsPath, _ := cmd.Flags().GetString("patterns")
			calibrationPath, _ := cmd.Flags().GetString("calibration")
			settingsPath, _ := cmd.Flags().GetString("settings")
			dsn, _ := cmd.Flags().GetString("sentry-dsn")

			if err := obs.Init(dsn); err != nil {
				return fmt.Errorf("sentry init: %w", err)
			}

			lib, err := loadLibrary(patternsPath)
			if err != nil {
				return err
			}
			art, err := loadCalibration(calibrationPath)
			if err != nil {
				return err
			}
			settings := config.Default()
			if settingsPath != "" {
				settings, err = config.Load(settingsPath)
				if err != nil {
					return err
				}
			}

			p := analysis.NewPipeline(lib, art, settings)
			opts := analysis.Options{
				KeyHint:         keyHint,
				Profile:         analysis.Profile(profile),
				BestCover:       bestCover,
				MaxAlternatives: -1,
			}

			var result *analysis.Result
			if midiPath != "" {
				chords, err := midi.ChordsFromFile(midiPath)
				if err != nil {
					return err
				}
				result, err = p.AnalyzeContext(context.Background(), chords, opts)
				if err != nil {
					return err
				}
			} else {
				result, err = p.Analyze(context.Background(), strings.Join(args, " "), opts)
				if err != nil {
					return err
				}
			}

			if interactive {
				return tui.Run(result)
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHint, "key", "", `key hint, e.g. "C major"`)
	cmd.Flags().StringVar(&profile, "profile", "", "style profile: classical|jazz|pop|modal|folk|choral")
	cmd.Flags().StringVar(&midiPath, "midi", "", "read the chord progression from a standard MIDI file instead of arguments")
	cmd.Flags().BoolVar(&bestCover, "best-cover", false, "select a non-overlapping maximal-score evidence subset")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "open the interactive result browser")
	return cmd
}

func printResult(result *analysis.Result) {
	if result.Primary == nil {
		fmt.Println(result.Summary)
		return
	}

	fmt.Println(result.Summary)
	fmt.Print("romans: ")
	for i, tok := range result.Primary.Romans {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(tok.Render())
	}
	fmt.Println()
	fmt.Println(result.Primary.Reasoning)

	for i, p := range result.PatternsDetected {
		fmt.Printf("pattern %d: %s [%d,%d] track=%s raw=%.2f\n", i, p.ID, p.Span[0], p.Span[1], p.Track, p.RawScore)
	}

	for i, alt := range result.Alternatives {
		fmt.Printf("alternative %d: %s in key, calibrated=%.2f\n", i, alt.Type, alt.CalibratedConfidence)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Kind, w.Message)
	}
}

func loadLibrary(path string) (*pattern.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pattern.Load(data)
}

func loadCalibration(path string) (*calibration.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return calibration.Load(data)
}
