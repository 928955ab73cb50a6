// Command chaingraph is the catalog/query CLI for chaingraphdb, grounded
// on cmd/cli/storage.go's env/flag middleware and cmd/synnergy/main.go's
// root-command assembly.
package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chaingraphdb/core"
	"chaingraphdb/pkg/config"
	"chaingraphdb/pkg/utils"
)

var (
	catalog      *core.GraphCatalog
	cliLog       = log.New()
	defaultGraph string
	cliFlags     struct {
		catalogRoot string
		graphName   string
	}
)

func initCatalogMiddleware(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	resolveStringFlag(cmd, "catalog", &cliFlags.catalogRoot, utils.EnvOrDefault("CHAINGRAPH_CATALOG_ROOT", ""))
	resolveStringFlag(cmd, "graph", &cliFlags.graphName, utils.EnvOrDefault("CHAINGRAPH_GRAPH", ""))

	if cliFlags.catalogRoot == "" {
		cfg, err := config.LoadFromEnv()
		if err == nil && cfg.Catalog.Root != "" {
			cliFlags.catalogRoot = cfg.Catalog.Root
		} else {
			cliFlags.catalogRoot = "./data"
		}
	}
	if cliFlags.graphName == "" {
		cliFlags.graphName = "default"
	}
	defaultGraph = cliFlags.graphName

	var err error
	catalog, err = core.OpenCatalog(cliFlags.catalogRoot, core.GraphOptions{BufferPoolSize: 1024})
	if err != nil {
		cliBail(err)
	}
}

func resolveStringFlag(cmd *cobra.Command, name string, dst *string, fallback string) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		v = fallback
	}
	*dst = v
}

func cliBail(err error) {
	if err != nil {
		cliLog.Fatalf("chaingraph: %v", err)
	}
}

func currentGraph() (*core.Graph, error) {
	if g, err := catalog.Use(defaultGraph); err == nil {
		return g, nil
	}
	return catalog.Create(defaultGraph)
}

func main() {
	root := &cobra.Command{
		Use:              "chaingraph",
		Short:            "Embedded property-graph database for blockchain link tracing",
		PersistentPreRun: initCatalogMiddleware,
	}
	root.PersistentFlags().String("catalog", "", "Catalog root directory (CHAINGRAPH_CATALOG_ROOT)")
	root.PersistentFlags().String("graph", "", "Active graph name (CHAINGRAPH_GRAPH)")

	root.AddCommand(catalogCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(shellCmd())
	root.AddCommand(importCmd())
	root.AddCommand(dotCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
