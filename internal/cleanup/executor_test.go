package cleanup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func memGroup(t *testing.T, fs afero.Fs, paths ...string) *models.Group {
	t.Helper()
	g := &models.Group{Key: models.Key{Size: models.Some(int64(5))}}
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fs, p, []byte("hello"), 0644))
		g.Files = append(g.Files, &models.FileRecord{Path: p, Name: filepath.Base(p), Size: models.Some(int64(5)), Bytes: 5})
	}
	return g
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

// scripted answers prompts in order and records what was asked
type scripted struct {
	answers []bool
	prompts []string
}

func (s *scripted) Confirm(prompt string, defaultYes bool) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return defaultYes, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func TestExecutor_Disabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b")

	var out bytes.Buffer
	e := NewExecutor(&config.Settings{ForceDelete: true}, fs, nil, &out, zap.NewNop())
	summary, err := e.Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.Zero(t, summary.Deleted)
	assert.Empty(t, summary.Groups)
	assert.Empty(t, out.String())
	assert.True(t, exists(t, fs, "/b"))
}

func TestExecutor_ForcedKeepsFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	groups := []*models.Group{
		memGroup(t, fs, "/a", "/b", "/c"),
		memGroup(t, fs, "/x", "/y"),
	}

	core, logs := observer.New(zapcore.InfoLevel)
	settings := &config.Settings{Delete: true, ForceDelete: true}
	decider := DeciderFunc(func(string, bool) (bool, error) {
		t.Fatal("forced mode must not prompt")
		return false, nil
	})

	var out bytes.Buffer
	summary, err := NewExecutor(settings, fs, decider, &out, zap.New(core)).Execute(context.Background(), groups)
	require.NoError(t, err)

	assert.True(t, exists(t, fs, "/a"))
	assert.False(t, exists(t, fs, "/b"))
	assert.False(t, exists(t, fs, "/c"))
	assert.True(t, exists(t, fs, "/x"))
	assert.False(t, exists(t, fs, "/y"))

	assert.Equal(t, 3, summary.Deleted)
	assert.Equal(t, 2, summary.Kept)
	assert.Equal(t, int64(15), summary.FreedBytes)
	assert.Equal(t, 2, summary.Groups[0].Deleted)
	assert.Equal(t, 2, logs.FilterMessage("keep").Len())
	assert.Equal(t, 3, logs.FilterMessage("delete").Len())
	assert.Contains(t, out.String(), "    /a...   keep!\n")
	assert.Contains(t, out.String(), "    /b...   delete!\n")
}

func TestExecutor_ForcedSilent(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b")

	core, logs := observer.New(zapcore.InfoLevel)
	settings := &config.Settings{Delete: true, ForceDelete: true, Silent: true}

	var out bytes.Buffer
	_, err := NewExecutor(settings, fs, nil, &out, zap.New(core)).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.Empty(t, out.String())
	assert.False(t, exists(t, fs, "/b"))
	// The log gets every decision regardless of silent mode
	assert.Equal(t, 1, logs.FilterMessage("keep").Len())
	assert.Equal(t, 1, logs.FilterMessage("delete").Len())
}

func TestExecutor_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b", "/c")

	core, logs := observer.New(zapcore.InfoLevel)
	settings := &config.Settings{Delete: true, ForceDelete: true, DryRun: true}

	var out bytes.Buffer
	summary, err := NewExecutor(settings, fs, nil, &out, zap.New(core)).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	for _, p := range []string{"/a", "/b", "/c"} {
		assert.True(t, exists(t, fs, p), "%s must stay on disk", p)
	}
	assert.Zero(t, summary.Deleted)
	assert.True(t, summary.DryRun)
	assert.Equal(t, models.ActionDryRun, summary.Groups[0].Decisions[1].Action)

	deletes := logs.FilterMessage("delete").All()
	require.Len(t, deletes, 2)
	assert.Equal(t, true, deletes[0].ContextMap()["dry_run"])
	assert.Contains(t, out.String(), "delete! (dry run)")
}

func TestExecutor_InteractiveNeverEmptiesGroup(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b", "/c")

	decider := &scripted{answers: []bool{true, true, true}}
	settings := &config.Settings{Delete: true}

	summary, err := NewExecutor(settings, fs, decider, nil, zap.NewNop()).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.Equal(t, []string{"    /a delete (y/n)?", "    /b delete (y/n)?"}, decider.prompts)
	assert.False(t, exists(t, fs, "/a"))
	assert.False(t, exists(t, fs, "/b"))
	assert.True(t, exists(t, fs, "/c"))
	assert.Equal(t, 2, summary.Groups[0].Deleted)
	assert.Equal(t, models.ActionKeep, summary.Groups[0].Decisions[2].Action)
}

func TestExecutor_InteractiveDeclined(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b", "/c")

	core, logs := observer.New(zapcore.InfoLevel)
	decider := &scripted{answers: []bool{false, true}}
	settings := &config.Settings{Delete: true}

	_, err := NewExecutor(settings, fs, decider, nil, zap.New(core)).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.True(t, exists(t, fs, "/a"))
	assert.False(t, exists(t, fs, "/b"))
	assert.True(t, exists(t, fs, "/c"))
	assert.Equal(t, 2, logs.FilterMessage("keep").Len())
	assert.Equal(t, 1, logs.FilterMessage("delete").Len())
}

func TestExecutor_ConfirmErrorKeeps(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b")

	decider := DeciderFunc(func(string, bool) (bool, error) { return true, ErrNoAnswer })
	settings := &config.Settings{Delete: true}

	summary, err := NewExecutor(settings, fs, decider, nil, zap.NewNop()).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.True(t, exists(t, fs, "/a"))
	assert.Equal(t, 2, summary.Kept)
}

func TestExecutor_FailureContinues(t *testing.T) {
	base := afero.NewMemMapFs()
	g := memGroup(t, base, "/a", "/b", "/c")

	core, logs := observer.New(zapcore.WarnLevel)
	settings := &config.Settings{Delete: true, ForceDelete: true}
	fs := &failingRemove{Fs: base, fail: "/b"}

	var out bytes.Buffer
	summary, err := NewExecutor(settings, fs, nil, &out, zap.New(core)).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	assert.True(t, exists(t, base, "/b"))
	assert.False(t, exists(t, base, "/c"))
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, models.ActionFailed, summary.Groups[0].Decisions[1].Action)
	assert.Equal(t, 1, logs.FilterMessage("Can't delete file").Len())
	assert.Contains(t, out.String(), "Can't delete /b - ")
}

func TestExecutor_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := memGroup(t, fs, "/a", "/b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settings := &config.Settings{Delete: true, ForceDelete: true}
	_, err := NewExecutor(settings, fs, nil, nil, zap.NewNop()).Execute(ctx, []*models.Group{g})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, exists(t, fs, "/b"))
}

// Real files, forced deletion sorted by name: a kept, b and c removed
func TestExecutor_ForcedOnDisk(t *testing.T) {
	tmpDir := t.TempDir()
	var files []*models.FileRecord
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		files = append(files, &models.FileRecord{Path: path, Name: name})
	}
	g := &models.Group{Key: models.Key{SHA512: models.Some("x")}, Files: files}

	core, logs := observer.New(zapcore.InfoLevel)
	settings := &config.Settings{Delete: true, ForceDelete: true}

	_, err := NewExecutor(settings, afero.NewOsFs(), nil, nil, zap.New(core)).Execute(context.Background(), []*models.Group{g})
	require.NoError(t, err)

	if _, err := os.Stat(files[0].Path); err != nil {
		t.Errorf("a.txt must be kept: %v", err)
	}
	for _, f := range files[1:] {
		if _, err := os.Stat(f.Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s must be removed, stat error = %v", f.Name, err)
		}
	}

	keeps := logs.FilterMessage("keep").All()
	require.Len(t, keeps, 1)
	assert.True(t, strings.HasSuffix(keeps[0].ContextMap()["path"].(string), "a.txt"))
	assert.Equal(t, 2, logs.FilterMessage("delete").Len())
}

type failingRemove struct {
	afero.Fs
	fail string
}

func (f *failingRemove) Remove(name string) error {
	if name == f.fail {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Remove(name)
}
