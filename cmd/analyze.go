package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/findorigin/findorigin/internal/bot"
	"github.com/findorigin/findorigin/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Run the full pipeline once and print the assembled answer",
	Long:  "Extracts entities, searches candidate sources, ranks them via the language model, and prints the reply the bot would send. Reads stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputArg(args)
		if err != nil {
			return err
		}
		text = bot.NormalizeText(text)
		if n := len([]rune(text)); n < cfg.Input.MinChars {
			return eris.Errorf("text too short: %d chars, need at least %d", n, cfg.Input.MinChars)
		} else if n > cfg.Input.MaxChars {
			return eris.Errorf("text too long: %d chars, cap is %d", n, cfg.Input.MaxChars)
		}

		result, err := buildAnalyzer(cfg).Analyze(cmd.Context(), text)
		if err != nil {
			if eris.Is(err, pipeline.ErrSearchThrottled) {
				return eris.New("search access key is throttled, try again later")
			}
			return err
		}

		fmt.Println(bot.RenderResult(result))
		return nil
	},
}

// inputArg returns the positional argument or the whole of stdin.
func inputArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", eris.Wrap(err, "read stdin")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", eris.New("no text given: pass an argument or pipe to stdin")
	}
	return text, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
