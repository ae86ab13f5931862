package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/pipeline"
	"github.com/matzehuels/linevis/pkg/settings"
)

// datasetExts are the file extensions completed for dataset arguments.
var datasetExts = []string{"csv", "tsv", "xlsx", "json", "yaml", "yml"}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Dataset arguments complete
to .csv, .tsv, .xlsx, .json and .yaml files; --format, --mode and --log-format
complete to their allowed values.

  bash:        source <(linevis completion bash)
  zsh:         linevis completion zsh > "${fpath[1]}/_linevis"
  fish:        linevis completion fish | source
  powershell:  linevis completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerCompletions wires value completion for the flags and dataset
// arguments of every command below root.
func registerCompletions(root *cobra.Command) {
	formats := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	modes := []string{string(settings.ModeFlow), string(settings.ModeMatrix)}
	logFormatNames := make([]string, 0, len(logFormats))
	for f := range logFormats {
		logFormatNames = append(logFormatNames, f)
	}
	slices.Sort(logFormatNames)

	_ = root.RegisterFlagCompletionFunc("log-format", fixedValues(logFormatNames, false))
	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", fixedValues(formats, true))
		}
		if cmd.Flags().Lookup("mode") != nil {
			_ = cmd.RegisterFlagCompletionFunc("mode", fixedValues(modes, false))
		}
		if cmd.Flags().Lookup("settings") != nil {
			_ = cmd.MarkFlagFilename("settings", "toml")
		}
		if cmd.Flags().Lookup("script") != nil {
			_ = cmd.MarkFlagFilename("script", "yaml", "yml")
		}
		if strings.Contains(cmd.Use, "[dataset]") && cmd.ValidArgsFunction == nil {
			cmd.ValidArgsFunction = datasetArgs
		}
	}
}

// fixedValues completes a flag from a closed set. With list set, values
// are completed after the last comma of a comma separated list.
func fixedValues(values []string, list bool) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndexByte(toComplete, ','); list && i >= 0 {
			prefix = toComplete[:i+1]
		}
		var out []string
		for _, v := range values {
			if strings.HasPrefix(prefix+v, toComplete) {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func datasetArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return datasetExts, cobra.ShellCompDirectiveFilterFileExt
}
