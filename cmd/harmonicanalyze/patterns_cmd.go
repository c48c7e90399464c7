package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the loaded pattern library, ordered by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			patternsPath, _ := cmd.Flags().GetString("patterns")
			lib, err := loadLibrary(patternsPath)
			if err != nil {
				return err
			}
			for _, p := range lib.OrderedByPriorityDesc() {
				fmt.Printf("%-3d %-35s %-20s window=[%d,%d] tracks=%v\n", p.Priority, p.ID, p.Name, p.Window.Min, p.Window.Max, p.Track)
			}
			return nil
		},
	}
	return cmd
}
