package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicmine/internal/mailbox"
	"github.com/cognicore/topicmine/pkg/topicmine"
	"github.com/cognicore/topicmine/pkg/topicmine/config"
	"github.com/cognicore/topicmine/pkg/topicmine/excerpt"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

const (
	backendLexical  = "lexical"
	backendSemantic = "semantic"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the top topics from recent newsletters",
	Long: `Extract ranks the salient topics of the newsletters received in the last
--days days (or of a JSONL export given with --input). Recent issues count for
more than older ones unless --no-recency is set.

The lexical backend mines weighted n-grams and groups them by shared words.
The semantic backend scores keyphrases against the corpus embedding and
clusters them, falling back to shorter keyphrases and then to the lexical
backend when it finds too few topics.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("backend", backendLexical, "topic backend (lexical, semantic)")
	extractCmd.Flags().IntP("num-topics", "n", 5, "number of topics to return")
	extractCmd.Flags().Int("days", 7, "look back this many days (0 for the whole database)")
	extractCmd.Flags().String("input", "", "read messages from a JSONL export instead of the database")
	extractCmd.Flags().Bool("no-recency", false, "weight every issue equally")
	extractCmd.Flags().Bool("preserve-order", false, "lexical: keep cluster order instead of sorting by score")
	extractCmd.Flags().Int("ngram-min", 0, "semantic: shortest keyphrase in words (default from config)")
	extractCmd.Flags().Int("ngram-max", 0, "semantic: longest keyphrase in words (default from config)")
	extractCmd.Flags().Int("pool", 0, "semantic: minimum candidate pool (default from config)")
	extractCmd.Flags().Bool("examples", false, "show an example sentence per topic")
	extractCmd.Flags().Bool("json", false, "output results as JSON")
	extractCmd.Flags().Bool("record", true, "record the run in the database")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := loggerFor(cmd)

	backend, _ := cmd.Flags().GetString("backend")
	numTopics, _ := cmd.Flags().GetInt("num-topics")
	days, _ := cmd.Flags().GetInt("days")
	input, _ := cmd.Flags().GetString("input")
	noRecency, _ := cmd.Flags().GetBool("no-recency")
	preserve, _ := cmd.Flags().GetBool("preserve-order")
	ngramMin, _ := cmd.Flags().GetInt("ngram-min")
	ngramMax, _ := cmd.Flags().GetInt("ngram-max")
	pool, _ := cmd.Flags().GetInt("pool")
	examples, _ := cmd.Flags().GetBool("examples")
	asJSON, _ := cmd.Flags().GetBool("json")
	record, _ := cmd.Flags().GetBool("record")

	if backend != backendLexical && backend != backendSemantic {
		return fmt.Errorf("unknown backend %q (want %s or %s)", backend, backendLexical, backendSemantic)
	}

	sess, err := openSession(ctx, func(s *config.Settings) {
		if noRecency {
			s.Recency.Disabled = true
		}
	})
	if err != nil {
		return err
	}
	defer sess.close()
	if backend == backendSemantic {
		if err := sess.requireEmbedder(ctx); err != nil {
			return err
		}
	}

	var since time.Time
	var docs []ingest.Document
	if input != "" {
		docs, err = mailbox.LoadFromJSONL(input, log)
		record = false
	} else {
		if days > 0 {
			since = time.Now().AddDate(0, 0, -days)
		}
		docs, err = sess.engine.Recent(ctx, since, 0)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		log.Warn("no newsletters found", "days", days)
	}
	log.Info("extracting topics", "backend", backend, "docs", len(docs), "num_topics", numTopics)

	var ts []topics.Topic
	switch backend {
	case backendSemantic:
		req := topicmine.SemanticRequest{
			NumTopics:     numTopics,
			NGramRange:    sess.comp.NGram,
			CandidatePool: sess.comp.CandidatePool,
		}
		if ngramMin > 0 {
			req.NGramRange.Min = ngramMin
		}
		if ngramMax > 0 {
			req.NGramRange.Max = ngramMax
		}
		if pool > 0 {
			req.CandidatePool = pool
		}
		ts, err = sess.engine.ExtractSemantic(ctx, docs, req)
	default:
		ts, err = sess.engine.ExtractLexical(ctx, docs, topicmine.LexicalRequest{
			NumTopics:     numTopics,
			PreserveOrder: preserve,
		})
	}
	if err != nil {
		return err
	}

	if record && len(ts) > 0 {
		id, err := sess.engine.Record(ctx, topicmine.RunInfo{
			Backend:   backend,
			NumTopics: numTopics,
			DocCount:  len(docs),
			Since:     since,
		}, ts)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Debug("run recorded", "id", id)
	}

	var cards []excerpt.Card
	if examples {
		cards = sess.engine.Cards(ts, docs)
	}
	if asJSON {
		return writeTopicsJSON(ts, cards)
	}
	return writeTopicsTable(ts, cards)
}

type topicOutput struct {
	Rank    int      `json:"rank"`
	Label   string   `json:"label"`
	Phrase  string   `json:"phrase"`
	Related []string `json:"related,omitempty"`
	Score   float64  `json:"score"`
	Source  string   `json:"source"`
	Example string   `json:"example,omitempty"`
}

func writeTopicsJSON(ts []topics.Topic, cards []excerpt.Card) error {
	out := make([]topicOutput, len(ts))
	for i, t := range ts {
		out[i] = topicOutput{
			Rank:    i + 1,
			Label:   t.Label,
			Phrase:  t.Phrase,
			Related: t.Related,
			Score:   t.Score,
			Source:  string(t.Source),
		}
		if i < len(cards) {
			out[i].Example = cards[i].Example
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTopicsTable(ts []topics.Topic, cards []excerpt.Card) error {
	if len(ts) == 0 {
		fmt.Println("No topics found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTOPIC\tSCORE\tSOURCE")
	for i, t := range ts {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", i+1, t.Label, t.Score, t.Source)
		if i < len(cards) {
			fmt.Fprintf(w, "\t  Example: %q\t\t\n", cards[i].Example)
		}
	}
	return w.Flush()
}
