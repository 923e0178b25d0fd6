package scheduler

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Args renders o as bsub argument tokens, in stored order. Argument values are
// shell-quoted so that the joined line survives re-parsing by sh.
func (o *Options) Args() ([]string, error) {
	args := make([]string, 0, 2*o.Len())
	for _, key := range o.Keys() {
		if !validKey(key) {
			return nil, &EscapeError{Key: key, Reason: "invalid flag name"}
		}
		v := o.values[key]
		switch v.kind {
		case Absent:
			continue
		case Flag:
			args = append(args, "-"+key)
		case FlagWithArg:
			if strings.IndexByte(v.arg, 0) >= 0 {
				return nil, &EscapeError{Key: key, Reason: "value contains a NUL byte"}
			}
			args = append(args, "-"+key, quote(v.arg))
		}
	}
	return args, nil
}

// Render returns Args joined by single spaces.
func (o *Options) Render() (string, error) {
	args, err := o.Args()
	if err != nil {
		return "", err
	}
	return strings.Join(args, " "), nil
}

// quote shell-quotes s as a single word. shellquote leaves a leading '#'
// bare, which sh would read as the start of a comment.
func quote(s string) string {
	q := shellquote.Join(s)
	if strings.HasPrefix(q, "#") {
		return `\` + q
	}
	return q
}

// validKey reports whether key can follow a dash without quoting.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
