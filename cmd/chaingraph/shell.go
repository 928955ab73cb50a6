package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive GQL shell (REPL) against the active graph",
		Run: func(cmd *cobra.Command, args []string) {
			runShell()
		},
	}
}

func runShell() {
	fmt.Printf("chaingraph shell — graph %q, Ctrl-D to exit\n", defaultGraph)
	scanner := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			fmt.Print("gql> ")
		} else {
			fmt.Print("...> ")
		}
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte(' ')
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !strings.HasSuffix(trimmed, ";") {
			continue
		}
		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		if stmt == "" {
			continue
		}
		if stmt == "exit;" || stmt == "quit;" {
			return
		}
		runQuerySafe(stmt)
	}
}

// runQuerySafe runs a statement and prints an error inline instead of
// exiting the shell on a bad statement, unlike the one-shot query command.
func runQuerySafe(src string) {
	g, err := currentGraph()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	result, err := execGQL(g, src)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	printTable(result)
}
