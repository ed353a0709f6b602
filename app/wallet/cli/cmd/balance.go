package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type tx struct {
	Number     uint32 `json:"number"`
	IsGenesis  bool   `json:"is_genesis"`
	SenderID   uint32 `json:"sender_id"`
	ReceiverID uint32 `json:"receiver_id"`
	Amount     uint64 `json:"amount"`
	Remainder  uint64 `json:"remainder"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "List the node's unspent transactions and total balance",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/unspent", nodeURL))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var unspent []tx
	if err := json.NewDecoder(resp.Body).Decode(&unspent); err != nil {
		log.Fatal(err)
	}

	var total uint64
	for _, t := range unspent {
		fmt.Printf("tx#%d from %d: %d\n", t.Number, t.SenderID, t.Amount)
		total += t.Amount
	}

	fmt.Println("total balance:", total)
}
