package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newHealthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check LM and tool server availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := buildOrchestrator()
			status := o.HealthCheck(cmd.Context())

			fmt.Printf("LM (%s):          %s\n", cfg.LLM.BaseURL, statusText(status.LMAvailable, status.LMError))
			fmt.Printf("Tool server (%s): %s\n", cfg.Tools.Endpoint, statusText(status.ToolServerAvailable, status.ToolServerError))

			if !status.LMAvailable || !status.ToolServerAvailable {
				os.Exit(1)
			}
			return nil
		},
	}
}

func statusText(ok bool, errMsg string) string {
	if ok {
		return "ok"
	}
	return "unavailable (" + errMsg + ")"
}
