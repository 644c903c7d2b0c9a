package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core"
	"github.com/agenthands/nobelium/internal/driver"
	"github.com/agenthands/nobelium/internal/llm"
	"github.com/agenthands/nobelium/internal/logger"
	"github.com/agenthands/nobelium/internal/server"
)

var (
	cfgFile string

	stageReset   bool
	mergeReset   bool
	resolveStart int
	resolveEnd   int
	verifyProbe  string
)

var rootCmd = &cobra.Command{
	Use:   "nobelium",
	Short: "Nobel laureate resolution and mentorship graph pipeline",
	Long: `nobelium builds a mentorship graph of Nobel laureates: it fetches the
laureate registry, embeds registry and tree records into a staging database,
resolves tree names to registry identities with an LLM arbiter, and merges
the reconciled result into a Neo4j graph.

Stages run independently and leave their artifacts under the data directory,
so a broken run resumes at the stage that failed.`,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config/config.toml, falling back to built-in defaults)")

	stageCmd.Flags().BoolVar(&stageReset, "reset", false, "clear the staging database before staging")
	mergeCmd.Flags().BoolVar(&mergeReset, "reset", false, "clear the graph database before merging")
	resolveCmd.Flags().IntVar(&resolveStart, "start", 0, "first sample index to resolve")
	resolveCmd.Flags().IntVar(&resolveEnd, "end", 0, "sample index to stop before, 0 for all")
	verifyCmd.Flags().StringVar(&verifyProbe, "probe", "Bohr", "name fragment for the mentor in-degree probe")

	rootCmd.AddCommand(fetchCmd, normalizeCmd, stageCmd, resolveCmd, reconcileCmd,
		mergeCmd, lineageCmd, verifyCmd, runCmd, serveCmd)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("config/config.toml"); err == nil {
		return config.Load("config/config.toml")
	}
	return config.Default(), nil
}

// buildPipeline assembles the pipeline for one command invocation. Stages
// that only touch the artifact store skip the database connection, so fetch
// and reconcile work without a reachable Neo4j.
func buildPipeline(ctx context.Context, withDB bool) (*core.Pipeline, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, err
	}

	var staging, graph driver.GraphDriver
	cleanup := func() { appLog.Sync() }
	if withDB {
		conn, err := driver.Connect(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			return nil, nil, err
		}
		staging = conn.Database(cfg.Neo4j.StagingDatabase)
		graph = conn.Database(cfg.Neo4j.GraphDatabase)
		cleanup = func() {
			_ = conn.Close(ctx)
			appLog.Sync()
		}
	}

	return core.NewPipeline(cfg, appLog, staging, graph, llmClient, embedder), cleanup, nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the laureate registry into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Fetch(cmd.Context())
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Validate fetched rows into clean reference records",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Normalize(cmd.Context())
	},
}

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Embed samples and references into the staging database",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Stage(cmd.Context(), stageReset)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve staged samples against the references with the arbiter",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Resolve(cmd.Context(), resolveStart, resolveEnd)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mint scholar ids and annotate the mentorship tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Reconcile(cmd.Context())
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge references and the annotated tree into the graph database",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()
		_, err = p.Merge(cmd.Context(), mergeReset)
		return err
	},
}

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Detect mentorship lineages and label the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()
		_, err = p.Lineage(cmd.Context())
		return err
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Print graph counts and the mentor in-degree probe",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := p.Verify(cmd.Context(), verifyProbe)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order against a fresh staging database",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()
		return p.Run(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph and the reference index over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cleanup, err := buildPipeline(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := server.NewServer(p)
		r := srv.SetupRouter()
		p.Log.Info("starting server", "port", p.Cfg.Server.Port)
		return r.Run(":" + p.Cfg.Server.Port)
	},
}
