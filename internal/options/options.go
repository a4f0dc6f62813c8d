// Package options implements the functional options shared by the codec,
// save and load configurations.
//
// A package declares its option type as an alias,
//
//	type SaveOption = options.Option[*SaveConfig]
//
// builds options with New (validating) or NoError (plain setters), and runs
// them with Apply against a config that already holds the defaults.
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a function to Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New returns an option that runs fn and reports its error, for options that
// validate their argument.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError returns an option for a setter that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply runs opts against target in order and stops at the first error.
// Nil options are skipped so callers can pass conditional options inline.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
