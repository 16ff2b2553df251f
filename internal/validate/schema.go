package validate

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalid matches every validation failure via errors.Is.
var ErrInvalid = errors.New("invalid command parameters")

// Error describes why a single parameter was rejected.
type Error struct {
	Param   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Param declares one accepted command attribute.
type Param struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
}

// Schema is the ordered parameter set of one command. Params are checked in
// declaration order and the first failure is reported.
type Schema []Param

// Params holds validated values with defaults applied for absent optionals.
type Params map[string]any

func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p Params) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// Validate checks payload against the schema. It never looks anything up;
// existence of referenced entities is the caller's concern.
func (s Schema) Validate(payload map[string]any) (Params, error) {
	out := make(Params, len(s))
	for _, p := range s {
		v, ok := payload[p.Name]
		if !ok {
			if p.Required {
				return nil, &Error{
					Param:   p.Name,
					Message: fmt.Sprintf("%s is a required attribute, but it is not present", p.Name),
				}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		if got := KindOf(v); got != p.Kind {
			return nil, &Error{
				Param:   p.Name,
				Message: fmt.Sprintf("%s should be a %s, but was actually a %s", p.Name, p.Kind, got),
			}
		}
		out[p.Name] = v
	}

	var extra []string
	for name := range payload {
		if !s.has(name) {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, &Error{
			Param:   extra[0],
			Message: fmt.Sprintf("extra attribute %s was present, but is not allowed", extra[0]),
		}
	}
	return out, nil
}

func (s Schema) has(name string) bool {
	for _, p := range s {
		if p.Name == name {
			return true
		}
	}
	return false
}
