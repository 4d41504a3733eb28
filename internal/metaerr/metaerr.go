// Package metaerr attaches key/value metadata to errors so that it can be
// logged as structured attributes where the error is finally handled.
package metaerr

import "errors"

type metaError struct {
	err  error
	meta []any
}

func (e *metaError) Error() string {
	return e.err.Error()
}

func (e *metaError) Unwrap() error {
	return e.err
}

// WithMetadata wraps err and records the given key/value pairs with it.
// It returns nil if err is nil.
func WithMetadata(err error, keyvals ...any) error {
	if err == nil {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "!MISSING")
	}
	return &metaError{
		err:  err,
		meta: keyvals,
	}
}

// GetMetadata collects the metadata of all wrapped errors in the chain,
// outermost first. The result can be passed to slog.With.
func GetMetadata(err error) []any {
	var meta []any
	for err != nil {
		var me *metaError
		if !errors.As(err, &me) {
			break
		}
		meta = append(meta, me.meta...)
		err = me.err
	}
	return meta
}
