package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type block struct {
	Number       uint32 `json:"number"`
	OwnerID      uint32 `json:"owner_id"`
	ParentHash   string `json:"parent_hash"`
	Transactions []tx   `json:"transactions"`
}

var owner uint32

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print a node's chain",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().Uint32VarP(&owner, "owner", "o", 0, "Id of the chain owner to query.")
}

func chainRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/%d", nodeURL, owner))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var blocks []block
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		log.Fatal(err)
	}

	for _, b := range blocks {
		fmt.Printf("block #%d owner=%d parent=%s txs=%d\n", b.Number, b.OwnerID, b.ParentHash, len(b.Transactions))
	}
}
