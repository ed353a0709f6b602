// This is the entry point for the ledger wallet CLI.
package main

import "github.com/hanqo/ScaleOutDistributedLedger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
