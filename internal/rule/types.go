package rule

// Directive keywords, in the order they appear in a rule.
const (
	KeywordInput       = "input"
	KeywordThreads     = "threads"
	KeywordOutput      = "output"
	KeywordLog         = "log"
	KeywordBenchmark   = "benchmark"
	KeywordEnvironment = "conda"
)

// DirectiveValue is the value of one directive. It is implemented only by
// the types in this package.
type DirectiveValue interface {
	directiveValue()
}

// Path is a single quoted path.
type Path string

// Count is a bare integer such as a thread count.
type Count int

// PathList is an ordered list of quoted paths.
type PathList []string

// KeyedPath is one named entry of a KeyedPaths value.
type KeyedPath struct {
	Key  string
	Path string
}

// KeyedPaths is an ordered mapping from logical name to path, rendered as
// key='path' entries.
type KeyedPaths []KeyedPath

func (Path) directiveValue()       {}
func (Count) directiveValue()      {}
func (PathList) directiveValue()   {}
func (KeyedPaths) directiveValue() {}

// Directive is a keyword with its value.
type Directive struct {
	Keyword string
	Value   DirectiveValue
}

// Descriptor is everything needed to emit one rule.
type Descriptor struct {
	// Name is the rule name; it is also the executor target.
	Name string
	// Inputs maps logical input names to absolute paths.
	Inputs KeyedPaths
	// Threads is the thread count reserved for the rule.
	Threads Count
	// Outputs lists the absolute output paths (at least one).
	Outputs PathList
	// Logs lists the log files; the first one is the {log} redirect target.
	Logs PathList
	// Benchmarks lists benchmark record paths.
	Benchmarks PathList
	// Environment is an optional conda environment file.
	Environment Path
	// Commands holds the rendered shell statements.
	Commands []string
	// Empty is set when the pipeline template rendered to no statements
	// beyond the mandatory cd and banner.
	Empty bool
}

// Directives returns the directives of d in emission order. The
// environment directive is present only when Environment is set.
func (d *Descriptor) Directives() []Directive {
	directives := []Directive{
		{Keyword: KeywordInput, Value: d.Inputs},
		{Keyword: KeywordThreads, Value: d.Threads},
		{Keyword: KeywordOutput, Value: d.Outputs},
		{Keyword: KeywordLog, Value: d.Logs},
		{Keyword: KeywordBenchmark, Value: d.Benchmarks},
	}
	if d.Environment != "" {
		directives = append(directives, Directive{Keyword: KeywordEnvironment, Value: d.Environment})
	}
	return directives
}
