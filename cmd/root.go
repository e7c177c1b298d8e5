package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/equidadeplus/equidade_backend/cmd/http"
	systemcmd "github.com/equidadeplus/equidade_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "equidade",
	Short: "Equidade+ clinical backend for multi-unit therapy clinics.",
	Long: `Equidade+ serves the clinical records of a network of therapy units:
patients, appointments, session evolutions with supervision, standardized
assessments and per-unit reports.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
