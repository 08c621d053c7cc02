package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
	"github.com/madstone-tech/archetect-go/internal/coordinator"
)

var renderCmd = &cobra.Command{
	Use:     "render <location>",
	Aliases: []string{"r"},
	Short:   "Render an archetype into a destination directory",
	Long: `Render resolves an archetype bundle (a local path, an http(s) URL, or a
git remote) and runs its main script, prompting interactively for any
value not already supplied via --answer, --use-defaults, or
--use-defaults-all.`,
	GroupID: "render",
	Args:    cobra.ExactArgs(1),
	Example: `  archetectgo render ./my-archetype --destination ./my-service
  archetectgo render git::https://github.com/org/archetype.git -a name=svc
  archetectgo render ./my-archetype --use-defaults-all --headless`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	registerRenderFlags(renderCmd)
}

// registerRenderFlags registers the answer/flag surface shared by render
// and catalog, since both end in the same per-archetype RenderOptions.
func registerRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("destination", "d", ".", "destination directory")
	cmd.Flags().StringArrayP("answer", "a", nil, "explicit answer key=value, may be repeated")
	cmd.Flags().StringArray("switch", nil, "enable a named switch, may be repeated")
	cmd.Flags().StringArray("use-default", nil, "auto-accept the default for a named prompt, may be repeated")
	cmd.Flags().Bool("use-defaults-all", false, "auto-accept the default for every prompt")
	cmd.Flags().Bool("headless", false, "never prompt interactively; fail if an answer is missing")
	cmd.Flags().Bool("force-refresh", false, "bypass a cached copy of a remote source")
}

func renderOptionsFromFlags(cmd *cobra.Command) (coordinator.RenderOptions, error) {
	destination, _ := cmd.Flags().GetString("destination")
	rawAnswers, _ := cmd.Flags().GetStringArray("answer")
	switches, _ := cmd.Flags().GetStringArray("switch")
	useDefaults, _ := cmd.Flags().GetStringArray("use-default")
	useDefaultsAll, _ := cmd.Flags().GetBool("use-defaults-all")
	headless, _ := cmd.Flags().GetBool("headless")
	forceRefresh, _ := cmd.Flags().GetBool("force-refresh")

	answers := make(map[string]entities.Answer, len(rawAnswers))
	for _, raw := range rawAnswers {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return coordinator.RenderOptions{}, fmt.Errorf("invalid --answer %q, expected key=value", raw)
		}
		answers[key] = entities.Answer{Literal: value}
	}

	return coordinator.RenderOptions{
		Destination:    destination,
		Answers:        answers,
		Switches:       switches,
		UseDefaults:    useDefaults,
		UseDefaultsAll: useDefaultsAll,
		Headless:       headless,
		ForceRefresh:   forceRefresh,
	}, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, err := renderOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	return withTerminal(cmd.Context(), func(ctx context.Context, driver usecases.Driver) error {
		return c.RenderArchetype(ctx, args[0], driver, opts)
	})
}
