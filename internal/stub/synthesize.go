package stub

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MergeConflict records a prior field declaration that could not be carried
// over as written. Conflicts are reported, not fatal; the field falls back to
// the untyped default.
type MergeConflict struct {
	Field    string
	Declared string
	Reason   string
}

func (c MergeConflict) String() string {
	return fmt.Sprintf("%s (declared %q): %s", c.Field, c.Declared, c.Reason)
}

// Report summarises what Synthesize changed relative to the prior declaration.
type Report struct {
	// Added lists variables that had no prior declaration.
	Added []string
	// Dropped lists prior fields the template no longer references. Policy:
	// they are removed from the stub and surfaced here for a warning.
	Dropped []string
	// Conflicts lists prior declarations that fell back to the untyped field.
	Conflicts []MergeConflict
}

// Synthesize builds the typed-record declaration for one module from its free
// variable set, preserving any prior (possibly hand-edited) declaration: names
// present in prior keep their declared type, default, required flag, and
// description verbatim; newly discovered names get the untyped optional
// fallback. Fields are sorted by name so re-generation produces byte-stable
// output.
func Synthesize(module string, vars map[string]struct{}, prior *Stub) (Stub, Report) {
	out := Stub{
		Module: module,
		Record: RecordName(module),
	}
	var report Report

	if prior != nil {
		out.Output = prior.Output
		if strings.TrimSpace(prior.Record) != "" {
			out.Record = prior.Record
		}
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := Field{Name: name, Type: FieldTypeAny}
		if prior != nil {
			if declared, ok := prior.Field(name); ok {
				field = mergeField(declared, &report)
				out.Fields = append(out.Fields, field)
				continue
			}
		}
		report.Added = append(report.Added, name)
		out.Fields = append(out.Fields, field)
	}

	if prior != nil {
		for _, f := range prior.Fields {
			if _, ok := vars[f.Name]; !ok {
				report.Dropped = append(report.Dropped, f.Name)
			}
		}
		sort.Strings(report.Dropped)
	}

	return out, report
}

func mergeField(declared Field, report *Report) Field {
	typ, ok := ParseFieldType(string(declared.Type))
	if !ok {
		report.Conflicts = append(report.Conflicts, MergeConflict{
			Field:    declared.Name,
			Declared: string(declared.Type),
			Reason:   "unknown field type",
		})
		declared.Type = FieldTypeAny
		return declared
	}
	declared.Type = typ
	return declared
}

var recordSeparators = regexp.MustCompile(`[_\-]+([a-zA-Z0-9])`)

// RecordName derives the record identifier for a module: snake or kebab case
// becomes CamelCase with a Template suffix.
func RecordName(module string) string {
	name := recordSeparators.ReplaceAllStringFunc(module, func(m string) string {
		return strings.ToUpper(m[len(m)-1:])
	})
	name = strings.Trim(name, "_-")
	if name == "" {
		return "Template"
	}
	return strings.ToUpper(name[:1]) + name[1:] + "Template"
}
