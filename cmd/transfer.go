package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Writes the content document as JSON",
	Long:  `Writes the content document to file, or to stdout when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResources(appConfig, logger)
		if err != nil {
			return err
		}
		defer res.Close()

		data, err := res.store.Export()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			_, err := cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		logger.Info("content exported", zap.String("file", args[0]), zap.Int("bytes", len(data)))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replaces the content document with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		res, err := openResources(appConfig, logger)
		if err != nil {
			return err
		}
		defer res.Close()

		if err := res.store.Import(data); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		logger.Info("content imported", zap.String("file", args[0]))
		return nil
	},
}

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restores the default content",
	Long:  `Discards the stored content document and restores the built-in defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return errors.New("reset discards all content; pass --yes to confirm")
		}

		res, err := openResources(appConfig, logger)
		if err != nil {
			return err
		}
		defer res.Close()

		res.store.Reset()
		logger.Info("content reset to defaults")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")

	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)
}
