package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicmine/pkg/topicmine/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recorded extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		sess, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer sess.close()

		runs, err := sess.store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tBACKEND\tDOCS\tTOPICS")
		for _, r := range runs {
			phrases := make([]string, len(r.Topics))
			for i, t := range r.Topics {
				phrases[i] = t.Phrase
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Backend, r.DocCount, strings.Join(phrases, "; "))
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its scored topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		sess, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer sess.close()

		run, err := sess.store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(run)
		}
		printRun(run)
		return nil
	},
}

func printRun(r store.Run) {
	fmt.Printf("Run %s (%s backend, %d documents, %s)\n",
		r.ID, r.Backend, r.DocCount, r.CreatedAt.Local().Format(time.DateTime))
	if !r.Since.IsZero() {
		fmt.Printf("Window: since %s\n", r.Since.Local().Format(time.DateOnly))
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTOPIC\tSCORE\tSOURCE")
	for _, t := range r.Topics {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", t.Rank, t.Label, t.Score, t.Source)
	}
	w.Flush()
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	runsListCmd.Flags().Int("limit", 10, "number of runs to show")
	runsListCmd.Flags().Bool("json", false, "output as JSON")
	runsShowCmd.Flags().Bool("json", false, "output as JSON")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
