package config

import (
	"fmt"
	"os"
	"strings"

	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// SecretResolver resolves ${ENV_VAR} and secret://REF tokens found in
// operation option values. Lookup is only invoked for secret:// tokens;
// env tokens are resolved directly via os.LookupEnv.
type SecretResolver struct {
	Lookup func(ref string) (string, error)
}

// Resolve rewrites s if it matches a recognized secret token syntax,
// returning s unchanged otherwise.
func (r SecretResolver) Resolve(s string) (string, error) {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		name := strings.TrimSuffix(strings.TrimPrefix(s, "${"), "}")
		v, ok := os.LookupEnv(name)
		if !ok {
			return "", flowerrors.NewConfigurationError(flowerrors.MissingSecret, name,
				fmt.Sprintf("environment variable %q is not set", name), nil)
		}
		return v, nil
	case strings.HasPrefix(s, "secret://"):
		ref := strings.TrimPrefix(s, "secret://")
		if r.Lookup == nil {
			return "", flowerrors.NewConfigurationError(flowerrors.MissingSecret, ref,
				"no secret lookup callback configured for secret:// references", nil)
		}
		v, err := r.Lookup(ref)
		if err != nil {
			return "", flowerrors.NewConfigurationError(flowerrors.MissingSecret, ref, err.Error(), err)
		}
		return v, nil
	default:
		return s, nil
	}
}

// ResolveOptions walks an option map in place, rewriting every string value
// through Resolve. Nested maps and slices are walked recursively.
func (r SecretResolver) ResolveOptions(opts map[string]any) error {
	for k, v := range opts {
		resolved, err := r.resolveValue(v)
		if err != nil {
			return err
		}
		opts[k] = resolved
	}
	return nil
}

func (r SecretResolver) resolveValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return r.Resolve(t)
	case map[string]any:
		if err := r.ResolveOptions(t); err != nil {
			return nil, err
		}
		return t, nil
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			resolved, err := r.resolveValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}
