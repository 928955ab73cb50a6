package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chaingraphdb/core"
	"chaingraphdb/gql"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [statement]",
		Short: "Run one GQL statement against the active graph",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				cliBail(errors.New("a GQL statement is required"))
			}
			runQuery(strings.Join(args, " "))
		},
	}
	return cmd
}

func runQuery(src string) {
	g, err := currentGraph()
	cliBail(err)

	result, err := execGQL(g, src)
	cliBail(err)

	printTable(result)
}

// execGQL parses and executes one statement, shared by the one-shot query
// command and the interactive shell.
func execGQL(g *core.Graph, src string) (*gql.QueryResult, error) {
	stmt, err := gql.Parse(src)
	if err != nil {
		return nil, err
	}
	ex := gql.NewExecutorWithCatalog(g, catalog)
	return ex.Execute(stmt, nil)
}

func printTable(result *gql.QueryResult) {
	if result == nil || len(result.Columns) == 0 {
		fmt.Printf("OK (%d rows)\n", result.Stats.RowsReturned)
		return
	}
	fmt.Println(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.String()
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(result.Rows))
}
