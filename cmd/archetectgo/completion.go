package main

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate the autocompletion script for archetectgo for the specified shell.

To load completions:

Bash:
  $ source <(archetectgo completion bash)
  # To load completions for each session, execute once:
  $ archetectgo completion bash > /etc/bash_completion.d/archetectgo

Zsh:
  $ source <(archetectgo completion zsh)
  # To load completions for each session, execute once:
  $ archetectgo completion zsh > "${fpath[1]}/_archetectgo"

Fish:
  $ archetectgo completion fish | source
  # To load completions for each session, execute once:
  $ archetectgo completion fish > ~/.config/fish/completions/archetectgo.fish

PowerShell:
  PS> archetectgo completion powershell | Out-String | Invoke-Expression
  # To load completions for each session, execute once:
  PS> archetectgo completion powershell > archetectgo.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
