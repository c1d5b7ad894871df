package main

import (
	"github.com/spf13/cobra"

	"github.com/jurybox/jurybox/internal/client"
)

// newClient builds a daemon client from the persistent --addr flag.
func newClient(cmd *cobra.Command) *client.Client {
	addr, _ := cmd.Flags().GetString("addr")
	return client.New(addr)
}
