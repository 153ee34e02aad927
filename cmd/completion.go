package cmd

import (
	"os"
	"sort"
	"strings"

	"github.com/jmurray2011/leaf/internal/logdir"
	"github.com/jmurray2011/leaf/internal/source"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for leaf.

To load completions:

Bash:
  $ source <(leaf completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leaf completion bash > /etc/bash_completion.d/leaf
  # macOS:
  $ leaf completion bash > $(brew --prefix)/etc/bash_completion.d/leaf

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ leaf completion zsh > "${fpath[1]}/_leaf"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ leaf completion fish | source

  # To load completions for each session, execute once:
  $ leaf completion fish > ~/.config/fish/completions/leaf.fish

PowerShell:
  PS> leaf completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> leaf completion powershell > leaf.ps1
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
	rootCmd.AddCommand(completionCmd)

	pageCmd.ValidArgsFunction = completeSources
	followCmd.ValidArgsFunction = completeSources
	filesCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
}

// completeSources offers configured aliases and the files in log_dir.
func completeSources(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	if cfg, err := source.LoadConfig(); err == nil {
		for name, alias := range cfg.Sources {
			out = append(out, "@"+name+"\t"+alias.URI)
		}
	}
	sort.Strings(out)

	if strings.HasPrefix(toComplete, "@") {
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	if files, err := logdir.New(viper.GetString("log_dir")).Files(""); err == nil {
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, cobra.ShellCompDirectiveDefault
}
