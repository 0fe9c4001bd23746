package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/engine"
)

var patternsMinProjects int

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show patterns recurring across projects",
	Long:  "With no subcommand, lists patterns eligible for promotion to permanent wisdom.",
	RunE:  runPatternsList,
}

var (
	patternsRecordContent string
	patternsRecordProject string
)

var patternsRecordCmd = &cobra.Command{
	Use:   "record [title]",
	Short: "Record a pattern sighting in a project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPatternsRecord,
}

var patternsPromoteCmd = &cobra.Command{
	Use:   "promote [id]",
	Short: "Promote a recurring pattern to permanent wisdom",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatternsPromote,
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	patterns, err := eng.DB.FindPromotable(patternsMinProjects)
	if err != nil {
		return fmt.Errorf("find promotable: %w", err)
	}

	if len(patterns) == 0 {
		fmt.Println("No promotable patterns yet.")
		return nil
	}

	fmt.Println("## Promotable Patterns")
	fmt.Println()
	for _, p := range patterns {
		fmt.Printf("  %d. %s (%d sightings across %s)\n",
			p.ID, p.Title, p.OccurrenceCount, strings.Join(p.Projects, ", "))
		if p.Content != "" {
			fmt.Printf("     %s\n", p.Content)
		}
	}

	return nil
}

func runPatternsRecord(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	project := patternsRecordProject
	if project == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve project: %w", err)
		}
		project = filepath.Base(wd)
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	sighting, err := eng.DB.RecordPattern(title, patternsRecordContent, project)
	if err != nil {
		return fmt.Errorf("record pattern: %w", err)
	}

	if sighting.IsNew {
		fmt.Printf("recorded new pattern %d: %s\n", sighting.ID, title)
	} else {
		fmt.Printf("pattern %d seen again (%d sightings across %d projects)\n",
			sighting.ID, sighting.OccurrenceCount, len(sighting.Projects))
	}
	return nil
}

func runPatternsPromote(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pattern id %q", args[0])
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	ref, err := eng.PromotePattern(id, engine.NewLocalPromoter())
	if err != nil {
		return err
	}

	fmt.Printf("promoted pattern %d: %s\n", id, ref)
	return nil
}

func init() {
	patternsCmd.AddCommand(patternsRecordCmd)
	patternsCmd.AddCommand(patternsPromoteCmd)

	patternsCmd.Flags().IntVar(&patternsMinProjects, "min-projects", 2, "Distinct projects required before a pattern is promotable")
	patternsRecordCmd.Flags().StringVar(&patternsRecordContent, "content", "", "What the pattern actually is")
	patternsRecordCmd.Flags().StringVar(&patternsRecordProject, "project", "", "Project the sighting happened in (default: current directory name)")
}
