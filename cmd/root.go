package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vitrine/common"
	"vitrine/config"
)

var (
	cfgFile   string
	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "vitrine",
	Short: "Vitrine - portfolio content server",
	Long: `Vitrine serves a personal portfolio site: projects, skills, blog posts,
pages, navigation and site settings kept in one content document, edited
through an authenticated admin API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	l, err := common.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	return nil
}
