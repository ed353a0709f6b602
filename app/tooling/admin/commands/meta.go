package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var metaPeer uint32

// MetaCmd prints what the target node believes the named peer already
// knows, per chain owner.
func MetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Print a peer's recorded meta-knowledge",
		Run:   metaRun,
	}
	addDebugURLFlag(cmd)
	cmd.Flags().Uint32VarP(&metaPeer, "peer", "p", 0, "Id of the peer to inspect.")
	return cmd
}

func metaRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/debug/admin/meta/%d", debugURL, metaPeer))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var heights map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&heights); err != nil {
		log.Fatal(err)
	}

	for owner, height := range heights {
		fmt.Printf("owner %s: known up to block %d\n", owner, height)
	}
}
