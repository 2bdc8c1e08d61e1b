package story

import "github.com/kataru-lang/kataru/pkg/value"

// Command is a fully resolved command ready for host dispatch: a
// name (possibly character- or namespace-qualified) and its merged
// parameters, each already promoted through expression evaluation.
type Command struct {
	Name   string
	Params Params
}

// MergeNamed fills every key declared in defaults but missing from
// supplied with its default value, preserving declared order and
// keeping any extra supplied keys appended after.
func MergeNamed(supplied, defaults Params) Params {
	out := make(Params, 0, len(defaults))
	for _, kv := range defaults {
		if v, ok := supplied.Get(kv.Name); ok {
			out = append(out, Param{Name: kv.Name, Value: v})
		} else {
			out = append(out, kv)
		}
	}
	for _, kv := range supplied {
		if _, ok := defaults.Get(kv.Name); !ok {
			out = append(out, kv)
		}
	}
	return out
}

// MergePositional zips supplied positional values against the
// declared default params' key order, falling back to the default
// value for any position beyond what was supplied.
func MergePositional(supplied PositionalParams, defaults Params) Params {
	out := make(Params, len(defaults))
	for i, kv := range defaults {
		if i < len(supplied) {
			out[i] = Param{Name: kv.Name, Value: supplied[i]}
		} else {
			out[i] = kv
		}
	}
	return out
}

// SplitCommandName splits a dotted command reference ("Character.cmd")
// into its character and command parts. ok is false if name carries
// no dot (a bare, non-character command) or more than one.
func SplitCommandName(name string) (character, cmd string, ok bool) {
	dot := -1
	for i, r := range name {
		if r == '.' {
			if dot != -1 {
				return "", "", false
			}
			dot = i
		}
	}
	if dot == -1 {
		return "", "", false
	}
	return name[:dot], name[dot+1:], true
}

// PromoteParams runs eval_as_expr over every value in p, returning a
// new Params with each value promoted in place (or propagating the
// first error encountered).
func PromoteParams(p Params, r value.Resolver) (Params, error) {
	out := make(Params, len(p))
	for i, kv := range p {
		if kv.Value.IsString() {
			promoted, err := value.EvalAsExpr(kv.Value.AsString(), r)
			if err != nil {
				return nil, err
			}
			out[i] = Param{Name: kv.Name, Value: promoted}
			continue
		}
		out[i] = kv
	}
	return out, nil
}
