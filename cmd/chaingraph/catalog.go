package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage graphs in the catalog",
	}
	cmd.AddCommand(catalogListCmd(), catalogCreateCmd(), catalogDropCmd())
	return cmd
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every graph in the catalog",
		Run: func(cmd *cobra.Command, args []string) {
			names, err := catalog.List()
			cliBail(err)
			for _, n := range names {
				fmt.Println(n)
			}
		},
	}
}

func catalogCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new graph",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				cliBail(errors.New("graph name is required"))
			}
			_, err := catalog.Create(args[0])
			cliBail(err)
			fmt.Printf("created graph %q\n", args[0])
		},
	}
}

func catalogDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop [name]",
		Short: "Drop a graph and delete its data",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				cliBail(errors.New("graph name is required"))
			}
			cliBail(catalog.Drop(args[0]))
			fmt.Printf("dropped graph %q\n", args[0])
		},
	}
}
