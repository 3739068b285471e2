package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the analysis prompts",
	Long: `The system and user prompts sent with every analysis live as text files in
~/.pagelens/prompts. Edit them to change what the model is asked to do;
deleting a file or emptying it restores the built-in prompt.`,
	RunE: runPromptsPath,
}

var promptsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the prompt directory",
	Args:  cobra.NoArgs,
	RunE:  runPromptsPath,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a prompt as currently in effect",
	Long: `Print a prompt as currently in effect.

Names:
  analysis_system  instructions and the JSON shape of the reply (default)
  analysis_user    the message sent after the screenshots`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPromptsShow,
}

func init() {
	promptsCmd.AddCommand(promptsPathCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsPath(cmd *cobra.Command, _ []string) error {
	if promptSource == nil {
		return errors.New("prompt store not initialised")
	}
	fmt.Fprintln(cmd.OutOrStdout(), promptSource.Dir())
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptSource == nil {
		return errors.New("prompt store not initialised")
	}

	name := driven.PromptAnalysisSystem
	if len(args) == 1 {
		name = args[0]
	}

	prompt, err := promptSource.Load(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}
