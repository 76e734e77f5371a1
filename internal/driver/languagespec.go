package driver

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// LanguageSpec carries a driver's compile/run commands as shell-like
// template strings with {src}/{bin}/{extraFlags} placeholders, rather
// than pre-built argv slices, so a compiler invocation can be written
// the way a human would type it ("g++ -O2 -o {bin} {src}") instead of
// assembled field-by-field.
type LanguageSpec struct {
	CompileTpl string
	RunTpl     string
	Src        string
	Bin        string
	ExtraFlags string
}

// buildCommand substitutes a LanguageSpec's placeholders into tpl and
// tokenizes the result with shlex, so quoting/escaping in ExtraFlags
// behaves the way a shell would.
func buildCommand(tpl string, spec LanguageSpec) ([]string, error) {
	rendered := strings.NewReplacer(
		"{src}", spec.Src,
		"{bin}", spec.Bin,
		"{extraFlags}", spec.ExtraFlags,
	).Replace(tpl)

	argv, err := shlex.Split(rendered)
	if err != nil {
		return nil, fmt.Errorf("tokenize command template %q: %w", tpl, err)
	}
	return argv, nil
}
