// This program performs administrative inspection of a running ledger node.
package main

import (
	"fmt"
	"os"

	"github.com/hanqo/ScaleOutDistributedLedger/app/tooling/admin/commands"
	"github.com/spf13/cobra"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	rootCmd := &cobra.Command{
		Use:     "admin",
		Short:   "Administrative inspection of a ledger node",
		Version: build,
	}

	rootCmd.AddCommand(commands.NodesCmd())
	rootCmd.AddCommand(commands.CacheCmd())
	rootCmd.AddCommand(commands.MetaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
