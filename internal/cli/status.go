package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contract-chat-mapping/internal/core/config"
	"contract-chat-mapping/internal/core/domain"
	"contract-chat-mapping/internal/resolve"
)

var statusCmd = &cobra.Command{
	Use:   "status [output-file]",
	Short: "Summarize a result file by status",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		path = cfg.Files.OutputFile
	}

	store, err := resolve.LoadStore(path)
	if err != nil {
		slog.Error("Failed to load results", "path", path, "error", err)
		os.Exit(1)
	}

	counts := make(map[domain.Status]int)
	for _, row := range store.Rows() {
		counts[row.Status]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tROWS")
	for _, status := range domain.AllStatuses {
		if counts[status] == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\n", status, counts[status])
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t%d\n", store.Len())
	_ = w.Flush()
}
