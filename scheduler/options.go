package scheduler

// Kind tells how a flag is rendered on the bsub command line.
type Kind uint8

const (
	// Absent suppresses the flag, even when a lower layer sets it.
	Absent Kind = iota
	// Flag renders as a bare switch, e.g. -I.
	Flag
	// FlagWithArg renders as a switch followed by one quoted argument.
	FlagWithArg
)

// Value is the value of an option. The zero Value is Absent.
type Value struct {
	kind Kind
	arg  string
}

// Unset returns a Value that suppresses its flag.
func Unset() Value { return Value{kind: Absent} }

// Switch returns a Value that renders its flag with no argument.
func Switch() Value { return Value{kind: Flag} }

// Arg returns a Value that renders its flag followed by s.
func Arg(s string) Value { return Value{kind: FlagWithArg, arg: s} }

func (v Value) Kind() Kind { return v.kind }

// String returns the argument of a FlagWithArg value and "" otherwise.
func (v Value) String() string { return v.arg }

// Option is a single key/value pair, used to build option sets literally.
type Option struct {
	Key   string
	Value Value
}

// Options is an insertion-ordered mapping of bsub flags to values.
// A nil *Options is a valid empty set for every read operation.
type Options struct {
	keys   []string
	values map[string]Value
}

// NewOptions builds a set from pairs. Repeated keys keep their first position
// and their last value.
func NewOptions(pairs ...Option) *Options {
	o := &Options{values: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// Set stores v under key. An existing key keeps its position.
func (o *Options) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Options) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key entirely, so a lower merge layer shows through again.
// Use Set(key, Unset()) to suppress a flag instead.
func (o *Options) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in render order.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone returns a deep copy of o.
func (o *Options) Clone() *Options {
	c := &Options{values: make(map[string]Value, o.Len())}
	if o == nil {
		return c
	}
	c.keys = append(c.keys, o.keys...)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// Merge returns a new set holding o overridden by each layer in turn.
// Later layers win on key collision; o and the layers are left untouched.
func (o *Options) Merge(layers ...*Options) *Options {
	merged := o.Clone()
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for _, k := range layer.keys {
			merged.Set(k, layer.values[k])
		}
	}
	return merged
}

// DefaultOptions returns a fresh copy of the baseline bsub flags.
//
// Memory reservation and host span both belong to -R, so they share one
// compound LSF resource string.
func DefaultOptions() *Options {
	return NewOptions(
		Option{"R", Arg("rusage[mem=4000] span[hosts=1]")},
		Option{"m", Arg("manda")},
		Option{"P", Arg("acc_PBG")},
		Option{"W", Arg("24:00")},
		Option{"L", Arg("/bin/bash")},
		Option{"q", Arg("premium")},
		Option{"n", Arg("16")},
	)
}
