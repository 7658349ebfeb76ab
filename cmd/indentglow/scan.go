package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/indentglow/internal/config"
	"github.com/dshills/indentglow/internal/engine/buffer"
	"github.com/dshills/indentglow/internal/indent"
)

type scanResult struct {
	File    string       `json:"file"`
	Unit    int          `json:"unit"`
	Buckets []scanBucket `json:"buckets"`
}

type scanBucket struct {
	Color  int      `json:"color"`
	RGBA   string   `json:"rgba"`
	Ranges [][2]int `json:"ranges"`
}

func newScanCmd(flags *globalFlags) *cobra.Command {
	var (
		tabSize int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Print the indentation colour buckets of a file",
		Long: `Compute the rainbow indentation ranges of a file (or stdin) and print
them per colour slot. Offsets are byte offsets; ranges are half-open.

Examples:
  indentglow scan main.rv
  indentglow scan --tab-size 2 --json main.rv
  cat main.rv | indentglow scan`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Resolve(path, config.OSEnv())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tab-size") {
				cfg.Editor.TabSize = tabSize
			}

			name := "-"
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				name = args[0]
				f, err := os.Open(name)
				if err != nil {
					return fmt.Errorf("opening %s: %w", name, err)
				}
				defer f.Close()
				in = f
			}
			// Line endings are normalised the way the editor buffer does it.
			buf, err := buffer.NewBufferFromReader(in)
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}

			palette, err := cfg.Palette()
			if err != nil {
				return err
			}
			res := scan(name, buf.Text(), cfg.TabSize(), palette)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printScan(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&tabSize, "tab-size", "t", 0, "indentation unit (default from config; non-positive means 4)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func scan(name, text string, unit int, palette indent.Palette) scanResult {
	buckets := indent.Compute(text, unit)
	res := scanResult{File: name, Unit: indent.ResolveUnit(unit)}
	for i := range buckets {
		b := scanBucket{Color: i, RGBA: palette[i].String(), Ranges: [][2]int{}}
		for _, r := range buckets.Ranges(i) {
			b.Ranges = append(b.Ranges, [2]int{r.Start, r.End})
		}
		res.Buckets = append(res.Buckets, b)
	}
	return res
}

func printScan(w io.Writer, res scanResult) {
	fmt.Fprintf(w, "%s (unit %d)\n", res.File, res.Unit)
	for _, b := range res.Buckets {
		parts := make([]string, len(b.Ranges))
		for i, r := range b.Ranges {
			parts[i] = fmt.Sprintf("[%d,%d)", r[0], r[1])
		}
		fmt.Fprintf(w, "%d %s: %s\n", b.Color, b.RGBA, strings.Join(parts, " "))
	}
}
