package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

// CacheCmd prints the target node's abstract cache height.
func CacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Print the target node's abstract cache height",
		Run:   cacheRun,
	}
	addDebugURLFlag(cmd)
	return cmd
}

func cacheRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/debug/admin/cache", debugURL))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Height uint64 `json:"height"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatal(err)
	}

	fmt.Println("abstract cache height:", out.Height)
}
