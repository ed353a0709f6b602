// Package commands implements the admin CLI's subcommands, each a thin
// HTTP client against a node's debug admin endpoints.
package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var debugURL string

func addDebugURLFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&debugURL, "url", "u", "http://localhost:7080", "Base URL of the node's debug API.")
}

// NodesCmd prints every node the target node currently knows about.
func NodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List every node the target node knows about",
		Run:   nodesRun,
	}
	addDebugURLFlag(cmd)
	return cmd
}

func nodesRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/debug/admin/nodes", debugURL))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var nodes map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&nodes); err != nil {
		log.Fatal(err)
	}

	for id, addr := range nodes {
		fmt.Printf("node %s: %s\n", id, addr)
	}
}
