package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/ledgercrypto"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new key pair",
	Run:   keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func keygenRun(cmd *cobra.Command, args []string) {
	pub, priv, err := ledgercrypto.Generate()
	if err != nil {
		log.Fatal(err)
	}

	path := getPrivateKeyPath()
	if !strings.HasSuffix(path, keyExtension) {
		path += keyExtension
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Fatal(err)
	}

	if err := node.SaveKey(path, priv); err != nil {
		log.Fatal(err)
	}

	fmt.Println("private key saved to:", path)
	fmt.Println("public key:", hexutil.Encode(pub[:]))
}
