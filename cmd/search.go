package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/findorigin/findorigin/internal/bot"
	"github.com/findorigin/findorigin/internal/entities"
	"github.com/findorigin/findorigin/internal/search"
	"github.com/findorigin/findorigin/pkg/serpstack"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Manual search testing: print the built query and raw categorized candidates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputArg(args)
		if err != nil {
			return err
		}
		text = bot.NormalizeText(text)

		ents := entities.Extract(text)
		fmt.Printf("query: %s\n", search.BuildQuery(ents))
		fmt.Printf("claims=%d dates=%d numbers=%d names=%d links=%d\n",
			len(ents.Claims), len(ents.Dates), len(ents.Numbers), len(ents.Names), len(ents.Links))

		searcher := search.NewSearcher(newSearchClient(cfg), cfg.Search.PerCategory)
		if !searcher.Configured() {
			fmt.Println("serpstack access key not set, skipping search")
			return nil
		}

		candidates, err := searcher.Search(cmd.Context(), ents)
		if err != nil {
			if eris.Is(err, serpstack.ErrUsageLimit) {
				return eris.New("serpstack access key is throttled")
			}
			return err
		}

		if len(candidates) == 0 {
			fmt.Println("no candidates found")
			return nil
		}
		for _, c := range candidates {
			fmt.Printf("[%s] %s\n        %s\n", c.Category, c.Title, c.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
