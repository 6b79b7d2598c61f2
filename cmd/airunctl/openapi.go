package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SmartChain-HD/AI/internal/api"
	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/pkg/openapi"
)

var openapiOut string

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Write the server's OpenAPI document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		reg, err := catalog.Load()
		if err != nil {
			return err
		}

		spec := api.NewSpec(cfg, reg.Names())
		if openapiOut == "" {
			data, err := openapi.MarshalJSON(spec)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		return openapi.WriteJSON(spec, openapiOut)
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringVarP(&openapiOut, "output", "o", "", "Write to this file instead of stdout")
}
