package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the current dependency report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ac, err := loadAppContext()
			if err != nil {
				return err
			}

			rep := ac.Report.Generate()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return nil
		},
	}
}
