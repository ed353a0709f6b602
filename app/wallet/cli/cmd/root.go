// Package cmd contains the ledger wallet CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	keyPath string
	nodeURL string
)

const keyExtension = ".ed25519"

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "zledger/wallet.ed25519", "Path to the wallet's private key file.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Base URL of the node's public API.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "A wallet for the ledger",
}

// Execute runs the wallet CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	return keyPath
}
