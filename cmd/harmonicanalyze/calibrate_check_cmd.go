package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"harmonic-analysis/calibration"
	"harmonic-analysis/track"
)

func calibrateCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate-check",
		Short: "Sanity-check a calibration artifact: per-track monotonicity (identity passthrough is not checked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			calibrationPath, _ := cmd.Flags().GetString("calibration")
			art, err := loadCalibration(calibrationPath)
			if err != nil {
				return err
			}

			for _, kind := range []track.Kind{track.Functional, track.Modal, track.Chromatic} {
				prev := -1.0
				monotone := true
				for i := 0; i <= 20; i++ {
					raw := float64(i) / 20
					got := calibration.Calibrate(art, kind, raw, calibration.Features{
						ChordCountBand: "low", OutsideKeyRatioBand: "low", EvidenceStrengthBand: "low",
					})
					if got < prev {
						monotone = false
					}
					prev = got
				}
				fmt.Printf("%-12s monotone=%v\n", kind, monotone)
			}
			fmt.Printf("artifact version: %s\n", art.Version)
			return nil
		},
	}
	return cmd
}
