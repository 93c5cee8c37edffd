package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/docgen/internal/docmodel"
	"github.com/mvp-joe/docgen/internal/extractor"
)

// printSummary writes a human-readable outline of every documented file.
func printSummary(w io.Writer, result *extractor.Result) {
	for _, doc := range result.PythonDocs {
		printFileDoc(w, result.Root, &doc)
	}
	for _, doc := range result.ConnectorDocs {
		fmt.Fprintf(w, "%s (connector %q)\n", relativeTo(result.Root, doc.Filename), doc.ConnectorName)
		fmt.Fprintf(w, "  actions:  %d bytes\n", len(doc.Actions))
		fmt.Fprintf(w, "  triggers: %d bytes\n", len(doc.Triggers))
		fmt.Fprintf(w, "  methods:  %d bytes\n", len(doc.Methods))
	}
}

func printFileDoc(w io.Writer, root string, doc *docmodel.FileDoc) {
	fmt.Fprintln(w, relativeTo(root, doc.Filename))
	if doc.ModuleDocstring != nil {
		fmt.Fprintf(w, "  %s\n", firstLine(*doc.ModuleDocstring))
	}

	for _, imp := range doc.Imports {
		line := "import " + strings.Join(imp.Name, ".")
		if len(imp.Module) > 0 {
			line = "from " + joinModule(imp.Module) + " " + line
		}
		if imp.Alias != nil {
			line += " as " + *imp.Alias
		}
		fmt.Fprintf(w, "  %s\n", line)
	}

	for _, class := range doc.Classes {
		fmt.Fprintf(w, "  class %s: %s\n", class.Name, firstLine(class.Docstring))
	}
	for _, fn := range doc.Functions {
		fmt.Fprintf(w, "  def %s(%s): %s\n", fn.Name, strings.Join(fn.Args, ", "), firstLine(fn.Docstring))
	}
}

// joinModule renders module segments, keeping a relative prefix attached.
func joinModule(segments []string) string {
	if strings.HasPrefix(segments[0], ".") {
		return segments[0] + strings.Join(segments[1:], ".")
	}
	return strings.Join(segments, ".")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func relativeTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
