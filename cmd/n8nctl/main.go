// Package main implements n8nctl, the operator CLI of the n8n deployment on Google Cloud.
// It validates stack configuration, inspects the target project and drives the Pulumi program.
package main

import "github.com/n8n-self-host/n8n-gcp/cmd/n8nctl/cmd"

func main() {
	cmd.Execute()
}
