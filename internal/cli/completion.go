package cli

import (
	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for graphyaml subcommands and flags, so
that "graphyaml se<TAB>" expands to serialize and --format offers the
registered output formats.

Load completions into the current session:

  bash:        source <(graphyaml completion bash)
  zsh:         source <(graphyaml completion zsh)
  fish:        graphyaml completion fish | source
  powershell:  graphyaml completion powershell | Out-String | Invoke-Expression

To install permanently, write the script to your shell's completion
directory instead, e.g.:

  graphyaml completion bash > /etc/bash_completion.d/graphyaml
  graphyaml completion zsh > "${fpath[1]}/_graphyaml"
  graphyaml completion fish > ~/.config/fish/completions/graphyaml.fish
`,
		// Override parent PersistentPreRunE: completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}

	return cmd
}
