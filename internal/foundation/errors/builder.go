package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of the given category at SeverityError.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  ErrorContext{},
	}}
}

// WrapError starts an error that wraps cause.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.cause = cause
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context[key] = value
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Build returns the error. The builder must not be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	ce := b.err
	return &ce
}

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

func LedgerError(message string) *ErrorBuilder {
	return NewError(CategoryLedger, message)
}

// ManifestParseError reports a manifest that could not be read or decoded.
// Injection falls back to pass-through, so it is logged as a warning.
func ManifestParseError(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryManifest, "failed to parse manifest").
		Warning().
		WithContext("path", path).
		Build()
}

// DocumentParseError reports a document whose regions could not be located.
// The message names the document so it reads well in a diagnostics list.
func DocumentParseError(documentID string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryDocument, "failed to parse document "+documentID).
		WithContext("document", documentID).
		Build()
}

// RewriteError reports a failure while generating or assembling parts.
func RewriteError(documentID string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryRewrite, "failed to rewrite document "+documentID).
		WithContext("document", documentID).
		Build()
}
