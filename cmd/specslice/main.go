// Package main provides the specslice CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"specslice/internal/baseline"
	"specslice/internal/diffreport"
	"specslice/internal/document"
	"specslice/internal/emit"
	"specslice/internal/gitsource"
	"specslice/internal/opkey"
	"specslice/internal/runlog"
	"specslice/internal/slice"
	"specslice/internal/specio"
)

var rootCmd = &cobra.Command{
	Use:   "specslice",
	Short: "Legacy-aware change filtering for API interface descriptions",
	Long: `specslice takes a before and after version of an API description, a
structural diff between them, and a baseline of legacy operations, and
produces a minimal document containing only the non-legacy changes plus
the transitive closure of their referenced components.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the partial spec from before/after documents",
	RunE:  runGenerate,
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Baseline commands",
}

var baselineOpsCmd = &cobra.Command{
	Use:   "ops <baseline-file>",
	Short: "List the operations a baseline document defines",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaselineOps,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Run history commands",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's decisions and output",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var (
	workDir      string
	beforeFile   string
	afterFile    string
	diffFile     string
	baselineFile string
	repoPath     string
	baseRef      string
	headRef      string
	specPath     string
	outJSON      string
	outYAML      string
	recordDB     string
	historyDB    string
	historyLimit int
	showOutput   bool
)

func init() {
	generateCmd.Flags().StringVar(&workDir, "dir", ".", "Workspace directory for artifact discovery")
	generateCmd.Flags().StringVar(&beforeFile, "before", "", "Before document (default: <dir>/swagger_main.{yaml,json})")
	generateCmd.Flags().StringVar(&afterFile, "after", "", "After document (default: <dir>/swagger_head.{yaml,json})")
	generateCmd.Flags().StringVar(&diffFile, "diff", "", "Structural diff artifact (default: <dir>/diff.json)")
	generateCmd.Flags().StringVar(&baselineFile, "baseline", "", "Baseline document (default: <dir>/swagger_baseline.{yaml,json})")
	generateCmd.Flags().StringVar(&repoPath, "repo", "", "Git repository to read before/after from instead of files")
	generateCmd.Flags().StringVar(&baseRef, "base-ref", "", "Git ref for the before document")
	generateCmd.Flags().StringVar(&headRef, "head-ref", "", "Git ref for the after document")
	generateCmd.Flags().StringVar(&specPath, "spec-path", "", "Path of the spec file inside the repository")
	generateCmd.Flags().StringVar(&outJSON, "out-json", "partial_spec.json", "Structured output path")
	generateCmd.Flags().StringVar(&outYAML, "out-yaml", "partial_spec.yaml", "Textual output path")
	generateCmd.Flags().StringVar(&recordDB, "history", "", "SQLite history database to record the run in")

	historyListCmd.Flags().StringVar(&historyDB, "history", "specslice.db", "SQLite history database")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyShowCmd.Flags().StringVar(&historyDB, "history", "specslice.db", "SQLite history database")
	historyShowCmd.Flags().BoolVar(&showOutput, "output", false, "Print the stored output document")

	baselineCmd.AddCommand(baselineOpsCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	before, after, baseLabel, headLabel, err := loadPair()
	if err != nil {
		return err
	}

	report, err := loadDiff()
	if err != nil {
		return err
	}

	base, err := loadBaseline()
	if err != nil {
		return err
	}

	result, err := slice.Run(before, after, report, base)
	if err != nil {
		return err
	}

	fmt.Print(emit.FormatDecisions(result.Decisions))
	for _, ref := range result.Unresolved {
		fmt.Fprintf(os.Stderr, "warning: unresolved reference %s\n", ref)
	}

	jsonBytes, err := emit.EncodeJSON(result.Doc)
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	if err := os.WriteFile(outJSON, jsonBytes, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outJSON, err)
	}

	yamlBytes, err := emit.EncodeYAML(result.Doc)
	if err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}
	if err := os.WriteFile(outYAML, yamlBytes, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outYAML, err)
	}

	fmt.Printf("Wrote %s and %s (%s)\n", outJSON, outYAML, result.Summary)

	if recordDB != "" {
		db, err := runlog.Open(recordDB)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.Record(baseLabel, headLabel, result.Summary, result.Decisions, jsonBytes)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded run %s\n", id)
	}
	return nil
}

// loadPair loads the before and after documents from the repository when
// git flags are set, otherwise from workspace files.
func loadPair() (before, after *document.Document, baseLabel, headLabel string, err error) {
	if repoPath != "" {
		if baseRef == "" || headRef == "" || specPath == "" {
			return nil, nil, "", "", errors.New("--repo requires --base-ref, --head-ref, and --spec-path")
		}
		repo, err := gitsource.Open(repoPath)
		if err != nil {
			return nil, nil, "", "", err
		}
		before, err = repo.DocumentAt(baseRef, specPath)
		if err != nil {
			return nil, nil, "", "", err
		}
		after, err = repo.DocumentAt(headRef, specPath)
		if err != nil {
			return nil, nil, "", "", err
		}
		return before, after, baseRef, headRef, nil
	}

	beforePath := beforeFile
	if beforePath == "" {
		beforePath = specio.FindArtifact(workDir, "swagger_main")
	}
	afterPath := afterFile
	if afterPath == "" {
		afterPath = specio.FindArtifact(workDir, "swagger_head")
	}

	before, err = specio.LoadFile(beforePath)
	if err != nil {
		if !errors.Is(err, specio.ErrNotFound) {
			return nil, nil, "", "", err
		}
		// A missing before document means every after operation is new.
		fmt.Fprintf(os.Stderr, "warning: before document missing at %s\n", beforePath)
		before = nil
	}
	after, err = specio.LoadFile(afterPath)
	if err != nil {
		return nil, nil, "", "", err
	}
	return before, after, beforePath, afterPath, nil
}

func loadDiff() (*diffreport.Report, error) {
	path := diffFile
	if path == "" {
		path = specio.FindArtifact(workDir, "diff")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No diff artifact: phase 2 detection still runs in full.
			return &diffreport.Report{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return diffreport.Parse(data)
}

func loadBaseline() (opkey.Set, error) {
	path := baselineFile
	if path == "" {
		path = specio.FindArtifact(workDir, "swagger_baseline")
	}
	doc, err := specio.LoadFile(path)
	if err != nil {
		if errors.Is(err, specio.ErrNotFound) {
			// Conservative default: nothing is legacy, everything is
			// strict-checked.
			fmt.Fprintf(os.Stderr, "warning: baseline missing at %s, treating all operations as non-legacy\n", path)
			return opkey.NewSet(), nil
		}
		return nil, err
	}
	set := baseline.Load(doc)
	fmt.Printf("Loaded %d legacy operations from baseline\n", len(set))
	return set, nil
}

func runBaselineOps(cmd *cobra.Command, args []string) error {
	doc, err := specio.LoadFile(args[0])
	if err != nil {
		return err
	}
	set := baseline.Load(doc)
	for _, key := range set.Sorted() {
		fmt.Println(key)
	}
	fmt.Printf("%d operations\n", len(set))
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := runlog.Open(historyDB)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.List(historyLimit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s -> %s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.BaseLabel, r.HeadLabel, r.Summary)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	db, err := runlog.Open(historyDB)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run %s  %s  %s -> %s\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.BaseLabel, run.HeadLabel)
	fmt.Printf("summary: %s  digest: %s\n", run.Summary, run.Digest)
	fmt.Print(emit.FormatDecisions(run.Decisions))
	if showOutput {
		os.Stdout.Write(run.OutputJSON)
	}
	return nil
}
