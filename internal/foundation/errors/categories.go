package errors

// ErrorCategory groups failures by where they originate.
type ErrorCategory string

const (
	// Invocation and configuration.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Injection. A build absorbs these by passing the affected document through.
	CategoryManifest ErrorCategory = "manifest"
	CategoryDocument ErrorCategory = "document"
	CategoryRewrite  ErrorCategory = "rewrite"

	// Source tree, output tree and ledger I/O.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryLedger     ErrorCategory = "ledger"

	CategoryInternal ErrorCategory = "internal"
)

// PassThrough reports whether a failure of this category leaves the
// affected document untouched instead of failing the run.
func (c ErrorCategory) PassThrough() bool {
	switch c {
	case CategoryManifest, CategoryDocument, CategoryRewrite:
		return true
	default:
		return false
	}
}

// ErrorSeverity selects the log level an error is reported at.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// ErrorContext carries structured attributes such as "path" or "document".
type ErrorContext map[string]any

// GetString returns the value under key when it holds a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
