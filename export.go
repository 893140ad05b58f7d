package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/plumber-cd/ez-desk/internal/export"
	"github.com/plumber-cd/ez-desk/internal/store"
)

const (
	formatMarkdown = "md"
	formatXLSX     = "xlsx"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		dir    string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report of a data directory as markdown or Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Data.Dir = dir
			}

			book, err := store.Load(cfg.Data.Dir)
			if err != nil {
				return err
			}
			if out == "" {
				out, err = defaultExportPath(cfg.Data.Dir, format)
				if err != nil {
					return err
				}
			}
			if err := writeExport(book, format, out); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Data directory (overrides data.dir)")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "Report format: md or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default EZ-DESK.<format> in the data directory)")
	return cmd
}

func defaultExportPath(dir, format string) (string, error) {
	switch format {
	case formatMarkdown:
		return filepath.Join(dir, store.MarkdownFileName), nil
	case formatXLSX:
		return filepath.Join(dir, store.XLSXFileName), nil
	}
	return "", fmt.Errorf("unknown format %q, want %s or %s", format, formatMarkdown, formatXLSX)
}

func writeExport(book *domain.Book, format, path string) error {
	switch format {
	case formatMarkdown:
		md, err := export.RenderMarkdown(book)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(md), 0644)
	case formatXLSX:
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.WriteXLSX(book, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unknown format %q, want %s or %s", format, formatMarkdown, formatXLSX)
}
