package terexlang

// Keyword is an entry of the TeREx keyword table.
type Keyword struct {
	Name    string
	Doc     string
	Special bool // special form, handled by the compiler
}

// Keywords is the static keyword table of TeREx: special forms, constants and
// builtin functions. It is read-only and shared process-wide.
var Keywords = []Keyword{
	{"def", "(def name expr) binds a global variable", true},
	{"defn", "(defn name (params…) body…) defines a global function", true},
	{"do", "(do expr…) evaluates expressions in order, yields the last", true},
	{"if", "(if cond then [else]) evaluates then or else", true},
	{"lambda", "(lambda (params…) body…) creates an anonymous function", true},
	{"quote", "(quote expr) yields expr as data, same as 'expr", true},
	{"set!", "(set! name expr) assigns to an existing variable", true},
	{"while", "(while cond body…) loops while cond holds, yields nil", true},
	{"nil", "the empty value, false in conditions", false},
	{"t", "the true value", false},
	{"print", "(print expr…) prints values, separated by blanks, followed by a newline", false},
	{"warn", "(warn expr…) raises a warning without stopping the program", false},
	{"error", "(error expr…) raises a runtime error", false},
	{"list", "(list expr…) creates a list", false},
	{"len", "(len list-or-string) returns the number of elements", false},
	{"first", "(first list) returns the first element of a list", false},
	{"rest", "(rest list) returns a list without its first element", false},
	{"str", "(str expr…) concatenates printed values into a string", false},
	{"not", "(not expr) is t if expr is nil, nil otherwise", false},
	{"+", "(+ n…) adds numbers", false},
	{"-", "(- n…) subtracts numbers, negates a single number", false},
	{"*", "(* n…) multiplies numbers", false},
	{"/", "(/ n…) divides numbers", false},
	{"%", "(% a b) returns the remainder of a divided by b", false},
	{"=", "(= a b) tests for equality", false},
	{"!=", "(!= a b) tests for inequality", false},
	{"<", "(< a b) compares numbers or strings", false},
	{">", "(> a b) compares numbers or strings", false},
	{"<=", "(<= a b) compares numbers or strings", false},
	{">=", "(>= a b) compares numbers or strings", false},
}

var keywordIndex map[string]int

func init() {
	keywordIndex = make(map[string]int, len(Keywords))
	for i, kw := range Keywords {
		keywordIndex[kw.Name] = i
	}
}

// LookupKeyword finds a keyword by name.
func LookupKeyword(name string) (Keyword, bool) {
	i, ok := keywordIndex[name]
	if !ok {
		return Keyword{}, false
	}
	return Keywords[i], true
}

// IsSpecialForm is a predicate: is name handled by the compiler?
func IsSpecialForm(name string) bool {
	kw, ok := LookupKeyword(name)
	return ok && kw.Special
}
