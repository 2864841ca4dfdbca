// Package main is the Pulumi program of the n8n deployment. Pulumi.yaml points the Go runtime here.
package main

import (
	"log/slog"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/logger"
	"github.com/n8n-self-host/n8n-gcp/internal/stack"
)

func main() {
	logger.Initialize(constants.Production, slog.LevelWarn)
	pulumi.Run(stack.Program)
}
