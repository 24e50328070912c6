package logging

import "context"

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying key/value pairs that every
// Logger adds to records logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := FieldsFrom(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFrom returns the pairs stored by ContextWith, or nil.
func FieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withFields prepends the context pairs to args.
func withFields(ctx context.Context, args []any) []any {
	fields := FieldsFrom(ctx)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	out = append(out, fields...)
	return append(out, args...)
}
