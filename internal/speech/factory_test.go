package speech

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocalinux/internal/models"
)

// fakeRecognizer считает вызовы Load/Close вместо реальной модели.
type fakeRecognizer struct {
	mu      sync.Mutex
	loads   int
	closed  bool
	loadErr error
}

func (f *fakeRecognizer) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads++
	return nil
}

func (f *fakeRecognizer) Feed(chunk []byte) (string, error)        { return "", nil }
func (f *fakeRecognizer) Finalize(chunks [][]byte) (string, error) { return "", nil }
func (f *fakeRecognizer) Name() string                             { return "fake" }

func (f *fakeRecognizer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeRecognizer) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeRecognizer) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestFactory(t *testing.T, cfg Config) *Factory {
	t.Helper()
	mgr, err := models.NewManagerAt(t.TempDir())
	require.NoError(t, err)
	f, err := NewFactory(mgr, cfg)
	require.NoError(t, err)
	return f
}

func TestNewFactoryRejectsUnknownEngine(t *testing.T) {
	mgr, err := models.NewManagerAt(t.TempDir())
	require.NoError(t, err)

	_, err = NewFactory(mgr, Config{Engine: "sphinx", ModelSize: "small", Language: "en-us"})
	assert.Error(t, err)
}

func TestFactoryConstructionDoesNotLoad(t *testing.T) {
	builds := 0
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})
	f.build = func(cfg Config) (Recognizer, error) {
		builds++
		return &fakeRecognizer{}, nil
	}

	assert.False(t, f.Ready())
	assert.Equal(t, 0, builds)
}

func TestFactoryEnsureLoadsOnce(t *testing.T) {
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	fake := &fakeRecognizer{}
	builds := 0
	f.build = func(cfg Config) (Recognizer, error) {
		builds++
		return fake, nil
	}

	rec, err := f.Ensure()
	require.NoError(t, err)
	assert.Same(t, Recognizer(fake), rec)
	assert.True(t, f.Ready())

	_, err = f.Ensure()
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, fake.loadCount())
}

func TestFactoryConcurrentEnsureSingleLoad(t *testing.T) {
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	fake := &fakeRecognizer{}
	builds := 0
	f.build = func(cfg Config) (Recognizer, error) {
		builds++
		time.Sleep(10 * time.Millisecond) // имитация долгой загрузки
		return fake, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Ensure()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, fake.loadCount())
}

func TestFactoryEnsureMissingModel(t *testing.T) {
	// Директория моделей пуста - загрузка должна вернуть ошибку,
	// а не уронить процесс.
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	_, err := f.Ensure()
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
	assert.False(t, f.Ready())
}

func TestFactoryReconfigureNeverLoads(t *testing.T) {
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	builds := 0
	f.build = func(cfg Config) (Recognizer, error) {
		builds++
		return &fakeRecognizer{}, nil
	}

	err := f.Reconfigure(Config{Engine: EngineWhisper, ModelSize: "small", Language: "en-us"})
	require.NoError(t, err)

	assert.False(t, f.Ready())
	assert.Equal(t, 0, builds)
	assert.Equal(t, EngineWhisper, f.Config().Engine)
}

func TestFactoryReconfigureInvalidatesLoadedModel(t *testing.T) {
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	old := &fakeRecognizer{}
	recs := []*fakeRecognizer{old, {}}
	builds := 0
	f.build = func(cfg Config) (Recognizer, error) {
		rec := recs[builds]
		builds++
		return rec, nil
	}

	_, err := f.Ensure()
	require.NoError(t, err)
	require.True(t, f.Ready())

	require.NoError(t, f.Reconfigure(Config{Engine: EngineVosk, ModelSize: "medium", Language: "en-us"}))
	assert.False(t, f.Ready())

	// Старый распознаватель закрывается в фоне.
	assert.Eventually(t, old.isClosed, time.Second, 10*time.Millisecond)

	_, err = f.Ensure()
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}

func TestFactoryReconfigureRejectsUnknownEngine(t *testing.T) {
	f := newTestFactory(t, Config{Engine: EngineVosk, ModelSize: "small", Language: "en-us"})

	err := f.Reconfigure(Config{Engine: "dragon", ModelSize: "small", Language: "en-us"})
	require.Error(t, err)

	// Конфигурация не изменилась.
	assert.Equal(t, EngineVosk, f.Config().Engine)
}

func TestWhisperSizeRemap(t *testing.T) {
	tests := []struct {
		requested string
		wantFile  string
	}{
		{"tiny", "ggml-tiny-q5_1.bin"},
		{"small", "ggml-base-q5_1.bin"},   // small -> base
		{"medium", "ggml-small-q5_1.bin"}, // medium -> small
		{"large", "ggml-medium-q5_0.bin"}, // large -> medium
		{"unknown", "ggml-base-q5_1.bin"},
	}

	dir := t.TempDir()
	mgr, err := models.NewManagerAt(dir)
	require.NoError(t, err)

	// Раскладываем все whisper модели по местам.
	for _, info := range models.GetModelsByEngine(models.EngineWhisper) {
		require.NoError(t, os.WriteFile(mgr.Path(info), []byte("ggml"), 0644))
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			f, err := NewFactory(mgr, Config{Engine: EngineWhisper, ModelSize: tt.requested, Language: "en-us"})
			require.NoError(t, err)

			rec, err := f.create(f.Config())
			require.NoError(t, err)

			w, ok := rec.(*WhisperRecognizer)
			require.True(t, ok)
			assert.Equal(t, tt.wantFile, filepath.Base(w.modelPath))
		})
	}
}

func TestWhisperFeedNotStreaming(t *testing.T) {
	w := NewWhisper("/nonexistent/model.bin", "en-us")
	_, err := w.Feed([]byte{0, 0})
	assert.ErrorIs(t, err, ErrNotStreaming)
}

func TestVoskFeedWithoutLoad(t *testing.T) {
	v := NewVosk("/nonexistent/model")
	_, err := v.Feed([]byte{0, 0})
	assert.Error(t, err)
}

func TestVoskLoadMissingModel(t *testing.T) {
	v := NewVosk(filepath.Join(t.TempDir(), "no-such-model"))
	err := v.Load()
	assert.Error(t, err)
}
