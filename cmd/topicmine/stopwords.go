package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
)

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords",
	Short: "Manage stopwords kept in the database",
	Long: `Stopwords added here are treated as newsletter noise on every later
extraction, on top of the built-in vocabulary and any --vocabulary file.`,
}

var stopwordsAddCmd = &cobra.Command{
	Use:   "add <word>...",
	Short: "Add stopwords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer sess.close()
		if err := sess.store.AddStopwords(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Printf("Added %d stopwords\n", len(args))
		return nil
	},
}

var stopwordsRemoveCmd = &cobra.Command{
	Use:   "remove <word>...",
	Short: "Remove stopwords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer sess.close()
		return sess.store.RemoveStopwords(cmd.Context(), args)
	},
}

var stopwordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stopwords kept in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer sess.close()
		words, err := sess.store.Stopwords(cmd.Context())
		if err != nil {
			return err
		}
		for _, w := range words {
			fmt.Println(w)
		}
		return nil
	},
}

var stopwordsSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest stopwords from words repeated across stored issues",
	Long: `Suggest lists words that appear in a large share of the stored newsletters
and are not yet filtered. These are usually sponsor lines and footer text.
With --add the suggestions are stored as stopwords.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer sess.close()

		docs, err := sess.store.DocsSince(ctx, time.Time{}, 0)
		if err != nil {
			return err
		}
		tok := ingest.NewTokenizer(sess.comp.Stoplist.Stopwords())
		lists := make([][]string, 0, len(docs))
		for _, d := range docs {
			lists = append(lists, tok.Tokenize(d.Subject+" "+d.Body))
		}

		th := stoplist.DefaultThresholds()
		th.DFPercent, _ = cmd.Flags().GetFloat64("min-df")
		th.MinDocs, _ = cmd.Flags().GetInt("min-docs")
		cands := sess.comp.Stoplist.SuggestCandidates(stoplist.DocumentFrequency(lists), len(docs), th)
		loggerFor(cmd).Debug("stopword suggestions", "docs", len(docs), "candidates", len(cands))

		words := make([]string, 0, len(cands))
		for _, c := range cands {
			fmt.Printf("%-24s %5.1f%%\n", c.Token, c.DFPercent)
			words = append(words, c.Token)
		}
		if add, _ := cmd.Flags().GetBool("add"); add && len(words) > 0 {
			if err := sess.store.AddStopwords(ctx, words); err != nil {
				return err
			}
			fmt.Printf("Added %d stopwords\n", len(words))
		}
		return nil
	},
}

func init() {
	def := stoplist.DefaultThresholds()
	stopwordsSuggestCmd.Flags().Float64("min-df", def.DFPercent, "minimum share of issues, in percent")
	stopwordsSuggestCmd.Flags().Int("min-docs", def.MinDocs, "minimum number of stored issues")
	stopwordsSuggestCmd.Flags().Bool("add", false, "store the suggestions as stopwords")

	stopwordsCmd.AddCommand(stopwordsAddCmd, stopwordsRemoveCmd, stopwordsListCmd, stopwordsSuggestCmd)
	rootCmd.AddCommand(stopwordsCmd)
}
