package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	receiverID uint32
	amount     uint64
)

type transferRequest struct {
	ReceiverID uint32 `json:"receiver_id"`
	Amount     uint64 `json:"amount"`
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transfer an amount to another node",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Uint32VarP(&receiverID, "to", "t", 0, "Receiving node's id.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	req := transferRequest{ReceiverID: receiverID, Amount: amount}

	body, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/transfer", nodeURL), "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		log.Fatalf("transfer rejected (%s): %s", resp.Status, errResp.Error)
	}

	fmt.Println("transfer accepted")
}
