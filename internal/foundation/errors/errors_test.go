package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	err := NewError(CategoryConfig, "invalid configuration").
		Fatal().
		WithContext("file", "pageinject.yaml").
		Build()

	assert.Equal(t, CategoryConfig, err.Category())
	assert.Equal(t, SeverityFatal, err.Severity())
	assert.Equal(t, "invalid configuration", err.Message())
	assert.Equal(t, "invalid configuration", err.Error())
	assert.NoError(t, err.Cause())

	file, ok := err.Context().GetString("file")
	require.True(t, ok)
	assert.Equal(t, "pageinject.yaml", file)

	_, ok = err.Context().GetString("missing")
	assert.False(t, ok)
}

func TestWrappedErrorMessage(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "cannot write output").Build()

	assert.Equal(t, "cannot write output: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, SeverityError, err.Severity())
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("initialize: %w", ConfigError("root missing").Build())

	assert.True(t, HasCategory(err, CategoryConfig))
	assert.False(t, HasCategory(err, CategoryManifest))
	assert.Equal(t, CategoryConfig, CategoryOf(err))
	assert.Equal(t, CategoryInternal, CategoryOf(stderrors.New("plain")))
	assert.False(t, HasCategory(nil, CategoryConfig))
}

func TestPassThroughCategories(t *testing.T) {
	for _, c := range []ErrorCategory{CategoryManifest, CategoryDocument, CategoryRewrite} {
		assert.True(t, c.PassThrough(), c)
	}
	for _, c := range []ErrorCategory{CategoryConfig, CategoryFileSystem, CategoryLedger, CategoryInternal} {
		assert.False(t, c.PassThrough(), c)
	}
}

func TestDomainConstructors(t *testing.T) {
	cause := stderrors.New("unterminated <template> block")

	docErr := DocumentParseError("/src/pages/home.vue", cause)
	assert.Equal(t, CategoryDocument, docErr.Category())
	assert.Equal(t, "failed to parse document /src/pages/home.vue: unterminated <template> block", docErr.Error())
	assert.ErrorIs(t, docErr, cause)

	manifestErr := ManifestParseError("/src/pages.json", cause)
	assert.Equal(t, SeverityWarning, manifestErr.Severity())
	path, _ := manifestErr.Context().GetString("path")
	assert.Equal(t, "/src/pages.json", path)

	rewriteErr := RewriteError("a.vue", cause)
	assert.ErrorIs(t, rewriteErr, NewError(CategoryRewrite, "failed to rewrite document a.vue").Build())
	assert.NotErrorIs(t, rewriteErr, NewError(CategoryDocument, "failed to rewrite document a.vue").Build())
}
