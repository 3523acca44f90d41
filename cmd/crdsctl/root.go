package main

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
)

var maxTableSizeStr string

var rootCmd = &cobra.Command{
	Use:   "crdsctl",
	Short: "Exercise a standalone CrdsTable from the command line",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&maxTableSizeStr, "max-table-size", "0",
		"size budget for the table (0 = unlimited), e.g. 64MB")
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(seedStatsCmd)
}

func parseMaxTableSize() (datasize.ByteSize, error) {
	var sz datasize.ByteSize
	if err := sz.UnmarshalText([]byte(maxTableSizeStr)); err != nil {
		return 0, fmt.Errorf("--max-table-size %q: %w", maxTableSizeStr, err)
	}
	return sz, nil
}
