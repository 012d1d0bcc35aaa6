package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicmine/internal/mailbox"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Import newsletter messages from JSONL exports",
	Long: `Ingest reads one or more JSONL files with one message per line
({"id", "subject", "sender", "date", "body", "body_format"}) and stores them
in the database. Messages are keyed by id, so re-importing an export updates
it in place. HTML bodies are converted to plain text on the way in.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := loggerFor(cmd)

		sess, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer sess.close()

		total := 0
		for _, path := range args {
			docs, err := mailbox.LoadFromJSONL(path, log)
			if err != nil {
				return err
			}
			for _, d := range docs {
				if err := sess.engine.Ingest(ctx, d); err != nil {
					return err
				}
			}
			log.Info("ingested", "file", path, "messages", len(docs))
			total += len(docs)
		}

		count, err := sess.store.CountDocs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d messages (%d in database)\n", total, count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
