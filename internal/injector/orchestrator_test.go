package injector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pageinject/internal/config"
	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/observability"
)

const homeTemplate = "<template><div>hi</div></template>"

type fixture struct {
	root string
	cfg  *config.Config
}

func newFixture(t *testing.T, manifestJSON string) *fixture {
	t.Helper()
	root := t.TempDir()
	writeManifest(t, root, manifestJSON)
	return &fixture{
		root: root,
		cfg: &config.Config{
			Root:       root,
			Components: config.NewRegistry(config.Fragment{ID: "banner", Markup: "<Banner/>"}),
			InsertPos:  config.InsertPos{RawMode: "GLOBAL"},
		},
	}
}

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultManifestFile), []byte(content), 0o600))
}

func (f *fixture) page(rel string) string {
	return filepath.ToSlash(filepath.Join(f.root, rel))
}

type fakeRecorder struct {
	metrics.NoopRecorder
	mu         sync.Mutex
	transforms map[metrics.Outcome]int
	inits      map[metrics.InitResult]int
	pages      int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{transforms: map[metrics.Outcome]int{}, inits: map[metrics.InitResult]int{}}
}

func (r *fakeRecorder) IncTransform(o metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[o]++
}

func (r *fakeRecorder) IncInit(res metrics.InitResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits[res]++
}

func (r *fakeRecorder) SetManagedPages(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = n
}

type memorySink struct {
	mu     sync.Mutex
	events []eventstore.Event
}

func (s *memorySink) Append(_ context.Context, e eventstore.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func TestScenario_GlobalInsertion(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	o := New(f.cfg)

	require.NoError(t, o.OnBuildStart(t.Context()))
	snap := o.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, []string{"banner"}, []string(snap.Mapping["/pages/home"]))
	assert.Equal(t, 1, snap.TotalPages)
	assert.Equal(t, []string{f.page("pages/home.vue")}, snap.PageFiles)

	id := f.page("pages/home.vue")
	res := o.OnTransform(t.Context(), id, homeTemplate)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "<template>\n\n<Banner/>\n<div>hi</div>\n</template>", res.Code)
	require.NotNil(t, res.Map)
	assert.Equal(t, id, res.Map.File)
	assert.Equal(t, int64(1), o.TransformCount())
}

func TestScenario_ExcludedPage(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	f.cfg.InsertPos.Exclude = []string{"pages/home"}
	o := New(f.cfg)
	require.NoError(t, o.Initialize(t.Context()))

	assert.Empty(t, o.Snapshot().Mapping["/pages/home"])

	src := "<template><page-meta/><!-- note --><div>hi</div></template>"
	res := o.OnTransform(t.Context(), f.page("pages/home.vue"), src)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "<template>\n<page-meta/>\n<div>hi</div>\n</template>", res.Code)
}

func TestScenario_MalformedManifestResets(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	rec := newFakeRecorder()
	o := New(f.cfg, WithRecorder(rec))
	require.NoError(t, o.Initialize(t.Context()))
	o.OnTransform(t.Context(), f.page("pages/home.vue"), homeTemplate)
	require.Equal(t, int64(1), o.TransformCount())

	writeManifest(t, f.root, `{"pages": [`)
	reinit, err := o.OnWatchedFileChanged(t.Context(), filepath.Join(f.root, "pages.json"), ChangeUpdate)
	assert.True(t, reinit)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryManifest))

	assert.Nil(t, o.Snapshot())
	assert.False(t, o.Initialized())
	assert.Zero(t, o.TransformCount())
	assert.Zero(t, rec.pages)
	assert.Equal(t, 1, rec.inits[metrics.InitFailed])

	res := o.OnTransform(t.Context(), f.page("pages/home.vue"), homeTemplate)
	assert.Equal(t, homeTemplate, res.Code)
	assert.Nil(t, res.Map)
	assert.Empty(t, res.Errors)
}

func TestScenario_DocumentParseFailure(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	rec := newFakeRecorder()
	o := New(f.cfg, WithRecorder(rec))
	require.NoError(t, o.Initialize(t.Context()))

	id := f.page("pages/home.vue")
	src := "<template><div>"
	res := o.OnTransform(t.Context(), id, src)
	assert.Equal(t, src, res.Code)
	assert.Nil(t, res.Map)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], id)
	assert.Equal(t, 1, rec.transforms[metrics.OutcomeFailed])
}

func TestOnBuildStart_Idempotent(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	o := New(f.cfg)
	require.NoError(t, o.OnBuildStart(t.Context()))
	first := o.Snapshot()

	writeManifest(t, f.root, `{"pages":[{"path":"pages/home"},{"path":"pages/other"}]}`)
	require.NoError(t, o.OnBuildStart(t.Context()))
	assert.Same(t, first, o.Snapshot())
}

func TestOnBuildStart_RetriesAfterFailure(t *testing.T) {
	f := newFixture(t, `not json`)
	o := New(f.cfg)
	require.Error(t, o.OnBuildStart(t.Context()))

	writeManifest(t, f.root, `{"pages":[{"path":"pages/home"}]}`)
	require.NoError(t, o.OnBuildStart(t.Context()))
	assert.True(t, o.Initialized())
}

func TestOnWatchedFileChanged_Filters(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	o := New(f.cfg)
	require.NoError(t, o.Initialize(t.Context()))
	snap := o.Snapshot()

	tests := []struct {
		id   string
		kind ChangeKind
	}{
		{filepath.Join(f.root, "pages.json"), ChangeCreate},
		{filepath.Join(f.root, "pages.json"), ChangeDelete},
		{filepath.Join(f.root, "pages", "home.vue"), ChangeUpdate},
		{filepath.Join(f.root, "pages.json.bak"), ChangeUpdate},
	}
	for _, tt := range tests {
		reinit, err := o.OnWatchedFileChanged(t.Context(), tt.id, tt.kind)
		require.NoError(t, err)
		assert.False(t, reinit, tt.id)
	}
	assert.Same(t, snap, o.Snapshot())

	writeManifest(t, f.root, `{"pages":[{"path":"pages/home"},{"path":"pages/other"}]}`)
	reinit, err := o.OnWatchedFileChanged(t.Context(), filepath.Join(f.root, "pages.json"), ChangeUpdate)
	require.NoError(t, err)
	assert.True(t, reinit)
	assert.Equal(t, 2, o.Snapshot().TotalPages)
}

func TestOnTransform_PassThrough(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	rec := newFakeRecorder()
	o := New(f.cfg, WithRecorder(rec))

	t.Run("not initialized", func(t *testing.T) {
		res := o.OnTransform(t.Context(), f.page("pages/home.vue"), homeTemplate)
		assert.Equal(t, homeTemplate, res.Code)
		assert.Nil(t, res.Map)
	})

	require.NoError(t, o.Initialize(t.Context()))

	cases := map[string]string{
		"not a page":     f.page("pages/home.ts"),
		"outside root":   "/elsewhere/pages/home.vue",
		"no manifest ok": f.page("components/card.vue"),
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			res := o.OnTransform(t.Context(), id, homeTemplate)
			assert.Equal(t, homeTemplate, res.Code)
			assert.Nil(t, res.Map)
			assert.Empty(t, res.Errors)
		})
	}
	assert.Zero(t, o.TransformCount())
	assert.Equal(t, 3, rec.transforms[metrics.OutcomePassthrough])
}

func TestInitialize_MissingRoot(t *testing.T) {
	t.Setenv(config.EnvInputDir, "")
	t.Setenv(config.EnvInitCwd, "")

	o := New(&config.Config{})
	err := o.Initialize(t.Context())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Nil(t, o.Snapshot())
}

func TestInitialize_UsesEnvironmentRoot(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	t.Setenv(config.EnvInputDir, f.root)
	f.cfg.Root = ""

	o := New(f.cfg)
	require.NoError(t, o.Initialize(t.Context()))
	assert.Equal(t, 1, o.Snapshot().TotalPages)
}

func TestInitialize_WritesRouteTypes(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}],"subPackages":[{"root":"pkg","pages":[{"path":"a"}]}]}`)
	f.cfg.DTS = filepath.Join(f.root, "types", "routes.d.ts")

	var written []string
	o := New(f.cfg, WithRouteTypesWriter(func(path string, routes []string) (bool, error) {
		assert.Equal(t, f.cfg.DTS, path)
		written = routes
		return true, nil
	}))
	require.NoError(t, o.Initialize(t.Context()))
	assert.Equal(t, []string{"/pages/home", "/pkg/a"}, written)
}

func TestInitialize_RouteTypesFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	f.cfg.DTS = "routes.d.ts"
	o := New(f.cfg, WithRouteTypesWriter(func(string, []string) (bool, error) {
		return false, errors.New("disk full")
	}))
	require.NoError(t, o.Initialize(t.Context()))
	assert.True(t, o.Initialized())
}

func TestLedgerEvents(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	sink := &memorySink{}
	o := New(f.cfg, WithEventSink(sink))

	ctx := observability.WithBuildID(t.Context(), "build-1")
	require.NoError(t, o.Initialize(ctx))
	o.OnTransform(ctx, f.page("pages/home.vue"), homeTemplate)
	o.OnTransform(ctx, f.page("pages/missing.vue"), homeTemplate)

	require.Len(t, sink.events, 3)
	assert.Equal(t, eventstore.TypeManifestLoaded, sink.events[0].Type())

	var p eventstore.DocumentTransformedPayload
	require.NoError(t, eventstore.Decode(sink.events[1], &p))
	assert.Equal(t, "rewritten", p.Outcome)
	assert.Equal(t, "/pages/home", p.Route)
	assert.Equal(t, []string{"banner"}, p.Labels)
	assert.Equal(t, "build-1", sink.events[1].BuildID())

	require.NoError(t, eventstore.Decode(sink.events[2], &p))
	assert.Equal(t, "passthrough", p.Outcome)

	// Without a build ID nothing is recorded.
	o.OnTransform(t.Context(), f.page("pages/home.vue"), homeTemplate)
	assert.Len(t, sink.events, 3)
}

func TestProgressLogging(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"},{"path":"pages/b"}]}`)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	o := New(f.cfg, WithLogger(logger))
	require.NoError(t, o.Initialize(t.Context()))

	o.OnTransform(t.Context(), f.page("pages/home.vue"), homeTemplate)
	o.OnTransform(t.Context(), f.page("pages/b.vue"), homeTemplate)

	var progress []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "Processing pages..." {
			progress = append(progress, entry["progress"].(string))
		}
	}
	assert.Equal(t, []string{"2/2 (100%)"}, progress)
}

func TestConcurrentTransformsDuringReinitialize(t *testing.T) {
	f := newFixture(t, `{"pages":[{"path":"pages/home"}]}`)
	o := New(f.cfg)
	require.NoError(t, o.Initialize(t.Context()))

	id := f.page("pages/home.vue")
	want := "<template>\n\n<Banner/>\n<div>hi</div>\n</template>"

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				res := o.OnTransform(context.Background(), id, homeTemplate)
				if res.Code != homeTemplate && res.Code != want {
					t.Errorf("unexpected output %q", res.Code)
				}
			}
		}()
	}
	for range 5 {
		require.NoError(t, o.Initialize(t.Context()))
		time.Sleep(time.Millisecond)
	}
	wg.Wait()
	assert.True(t, o.Initialized())
}
