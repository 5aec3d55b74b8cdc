package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "property-listings",
		Short: "Property listings service",
		Long:  "Serve the property listing API with a read-through result cache and a full-response cache",
	}

	rootCmd.AddCommand(serveCmd(), metricsCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
