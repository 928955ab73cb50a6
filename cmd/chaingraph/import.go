package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chaingraphdb/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load vertices/edges from CSV or JSONL files",
	}
	cmd.AddCommand(importVerticesCmd(), importEdgesCmd())
	return cmd
}

func importOptions(cmd *cobra.Command) importer.Options {
	parallel, _ := cmd.Flags().GetBool("parallel")
	workers, _ := cmd.Flags().GetInt("workers")
	return importer.Options{Parallel: parallel, NumWorkers: workers}
}

func addImportFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "Path to the CSV/JSONL file [required]")
	cmd.Flags().Bool("jsonl", false, "Treat --file as newline-delimited JSON instead of CSV")
	cmd.Flags().Bool("parallel", false, "Import rows across a bounded worker pool")
	cmd.Flags().Int("workers", 4, "Worker count when --parallel is set")
}

func importVerticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertices",
		Short: "Import a vertex file",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("file")
			jsonl, _ := cmd.Flags().GetBool("jsonl")
			if path == "" {
				cliBail(errors.New("--file is required"))
			}
			f, err := os.Open(path)
			cliBail(err)
			defer f.Close()

			g, err := currentGraph()
			cliBail(err)
			im := importer.New(g, importOptions(cmd))

			var stats *importer.Stats
			if jsonl {
				stats, err = im.ImportVerticesJSONL(f)
			} else {
				stats, err = im.ImportVerticesCSV(f)
			}
			cliBail(err)
			fmt.Printf("imported %d vertices, %d failed\n", stats.VerticesImported, stats.RowsFailed)
		},
	}
	addImportFlags(cmd)
	return cmd
}

func importEdgesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edges",
		Short: "Import an edge file",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("file")
			jsonl, _ := cmd.Flags().GetBool("jsonl")
			if path == "" {
				cliBail(errors.New("--file is required"))
			}
			f, err := os.Open(path)
			cliBail(err)
			defer f.Close()

			g, err := currentGraph()
			cliBail(err)
			im := importer.New(g, importOptions(cmd))

			var stats *importer.Stats
			if jsonl {
				stats, err = im.ImportEdgesJSONL(f)
			} else {
				stats, err = im.ImportEdgesCSV(f)
			}
			cliBail(err)
			fmt.Printf("imported %d edges, %d failed\n", stats.EdgesImported, stats.RowsFailed)
		},
	}
	addImportFlags(cmd)
	return cmd
}
