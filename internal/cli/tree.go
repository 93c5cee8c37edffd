package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mvp-joe/docgen/internal/config"
	"github.com/mvp-joe/docgen/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	dirStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	fileStyle = lipgloss.NewStyle()
	enumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Show the Python and Ruby files extract would process",
	Long: `Tree scans a directory the same way extract does and prints the
matched files as a tree. Directories without any .py or .rb file below
them are left out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) > 0 {
			rootDir = args[0]
		}

		cfg, err := config.LoadConfigFromDir(rootDir)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		scanner, err := discovery.NewScanner(cfg.Discovery.Ignore)
		if err != nil {
			return fmt.Errorf("failed to create scanner: %w", err)
		}

		return printTree(cmd.OutOrStdout(), cmd.ErrOrStderr(), scanner, rootDir)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

// printTree scans rootDir and renders the pruned tree.
func printTree(stdout, stderr io.Writer, scanner *discovery.Scanner, rootDir string) error {
	source, err := scanner.Scan(rootDir)
	if err != nil {
		return err
	}

	if !discovery.HasMatches(source) {
		fmt.Fprintf(stderr, "No .py or .rb files under %s\n", source.Path)
	} else {
		fmt.Fprintln(stdout, renderTree(source, source.Path).String())
	}

	for _, f := range source.Failures() {
		fmt.Fprintf(stderr, "skipped %s\n", f)
	}
	return nil
}

// renderTree builds the display tree for node, keeping only branches that
// contain matched files. Files come before subdirectories, as in Flatten.
func renderTree(node *discovery.SourceTree, label string) *tree.Tree {
	t := tree.Root(label + "/").
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle).
		RootStyle(dirStyle).
		ItemStyle(fileStyle)

	for _, file := range node.Files {
		t.Child(filepath.Base(file))
	}
	for i := range node.Children {
		child := &node.Children[i]
		if !discovery.HasMatches(child) {
			continue
		}
		t.Child(renderTree(child, filepath.Base(child.Path)))
	}
	return t
}
