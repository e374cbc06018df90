package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRoute(t *testing.T) {
	tests := []struct {
		name   string
		root   string
		id     string
		want   string
		wantOK bool
	}{
		{"page", "/app/src", "/app/src/pages/home.vue", "/pages/home", true},
		{"trailing slash root", "/app/src/", "/app/src/pages/home.vue", "/pages/home", true},
		{"sub-package", "/app/src", "/app/src/pkgA/detail/index.vue", "/pkgA/detail/index", true},
		{"windows separators", `C:\app\src`, `C:\app\src\pages\home.vue`, "/pages/home", true},
		{"mixed separators", `C:/app/src`, `C:\app\src\pages\home.vue`, "/pages/home", true},
		{"no suffix", "/app/src", "/app/src/pages/home", "/pages/home", true},
		{"outside root", "/app/src", "/other/pages/home.vue", "", false},
		{"sibling prefix", "/app/src", "/app/src2/pages/home.vue", "", false},
		{"root itself", "/app/src", "/app/src", "", false},
		{"suffix only", "/app/src", "/app/src/.vue", "", false},
		{"empty root", "", "/app/src/pages/home.vue", "", false},
		{"empty id", "/app/src", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToRoute(tt.root, tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPage(t *testing.T) {
	assert.True(t, IsPage("/app/src/pages/home.vue"))
	assert.False(t, IsPage("/app/src/pages/home.ts"))
	assert.False(t, IsPage("/app/src/pages/home.vue?vue&type=style"))
}
