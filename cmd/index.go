package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the persisted job embedding index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the corpus and persist a fresh index",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		logger, config, done := bootstrap(ctx, "index build")
		defer done()

		engine, closeEngine, err := newEngine(ctx, config, logger, true)
		if err != nil {
			logger.Fatal("failed to build index", zap.Error(err))
		}
		defer closeEngine()

		meta := engine.Index().Meta()
		fmt.Printf("built index %s with %d vectors (%s, %d dims)\n", meta.BuildID, engine.Index().Len(), meta.Model, meta.Dimension)
	},
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print metadata of the persisted index",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		logger, config, done := bootstrap(ctx, "index info")
		defer done()

		store, err := newIndexStore(config.Index)
		if err != nil {
			logger.Fatal("failed to open index store", zap.Error(err))
		}

		ix, err := index.Read(ctx, store)
		if err != nil {
			logger.Fatal("failed to load index", zap.Error(err), zap.String("location", store.Location()))
		}

		meta := ix.Meta()
		fmt.Printf("location:    %s\n", store.Location())
		fmt.Printf("build id:    %s\n", meta.BuildID)
		fmt.Printf("built at:    %s\n", meta.BuiltAt.Format(time.RFC3339))
		fmt.Printf("model:       %s\n", meta.Model)
		fmt.Printf("dimension:   %d\n", meta.Dimension)
		fmt.Printf("vectors:     %d\n", ix.Len())
		fmt.Printf("corpus hash: %s\n", meta.CorpusHash)
	},
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}
