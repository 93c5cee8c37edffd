package docmodel

// DocstringNotDefined is substituted for a class or function description
// when the definition has no leading string statement. Renderers match on
// this exact value.
const DocstringNotDefined = "Docstring not defined."

// Recognized source extensions.
const (
	PythonExt = ".py"
	RubyExt   = ".rb"
)

// FileDoc is everything collected from one Python file.
type FileDoc struct {
	Filename        string           `json:"filename" yaml:"filename"`
	ModuleDocstring *string          `json:"module_docstring" yaml:"module_docstring"` // nil when the module has none
	Imports         []ImportRecord   `json:"imports" yaml:"imports"`
	Classes         []ClassRecord    `json:"classes" yaml:"classes"`
	Functions       []FunctionRecord `json:"functions" yaml:"functions"`
}

// NewFileDoc returns a FileDoc with fresh, empty collections.
func NewFileDoc(filename string) *FileDoc {
	return &FileDoc{
		Filename:  filename,
		Imports:   []ImportRecord{},
		Classes:   []ClassRecord{},
		Functions: []FunctionRecord{},
	}
}

// ImportRecord describes a single imported name.
//
// Module is empty for a direct "import x" and carries the dotted segments of
// X for "from X import y". Relative imports keep their dot prefix as the
// first Module segment, e.g. "from ..pkg import y" gives [".." "pkg"].
type ImportRecord struct {
	Module []string `json:"module" yaml:"module"`
	Name   []string `json:"name" yaml:"name"`
	Alias  *string  `json:"alias" yaml:"alias"`
}

// ClassRecord describes a class definition.
type ClassRecord struct {
	Name      string `json:"name" yaml:"name"`
	Docstring string `json:"docstring" yaml:"docstring"`
}

// FunctionRecord describes a function or method definition.
type FunctionRecord struct {
	Name      string   `json:"name" yaml:"name"`
	Docstring string   `json:"docstring" yaml:"docstring"`
	Args      []string `json:"args" yaml:"args"` // simple positional parameter names, in order
}

// ConnectorDoc is everything collected from one Ruby connector file.
// Actions, Triggers and Methods are the verbatim hash literal spans,
// braces included.
type ConnectorDoc struct {
	Filename      string `json:"filename" yaml:"filename"`
	ConnectorName string `json:"connector_name" yaml:"connector_name"`
	Title         string `json:"title" yaml:"title"`
	Actions       string `json:"actions" yaml:"actions"`
	Triggers      string `json:"triggers" yaml:"triggers"`
	Methods       string `json:"methods" yaml:"methods"`
}
