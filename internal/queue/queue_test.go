package queue

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/volpatch/internal/backend/cpu"
	"github.com/born-ml/volpatch/internal/patch"
	"github.com/born-ml/volpatch/internal/tensor"
)

var errBoom = errors.New("disk on fire")

// fakeSource serves 8x8 single-channel images tagged with their id.
type fakeSource struct {
	backend  *cpu.CPUBackend
	loads    map[int]int
	failOnce map[int]bool
	broken   map[int]bool
	weights  func(id int) *tensor.RawTensor
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		backend:  cpu.New(),
		loads:    make(map[int]int),
		failOnce: make(map[int]bool),
		broken:   make(map[int]bool),
	}
}

func (f *fakeSource) Load(id int) (patch.Bundle, error) {
	if f.failOnce[id] {
		delete(f.failOnce, id)
		return patch.Bundle{}, errBoom
	}
	if f.broken[id] {
		return patch.Bundle{}, errBoom
	}
	f.loads[id]++
	image := tensor.Full[float32](tensor.Shape{1, 8, 8}, float32(id), f.backend)
	return patch.NewKeyed(map[string]patch.Item{
		"image": patch.TensorItem(image),
		"id":    patch.ValueItem(id),
	}), nil
}

func (f *fakeSource) WeightMap(sample patch.Bundle) (*tensor.RawTensor, error) {
	id, _ := sample.Get("id")
	if f.weights != nil {
		return f.weights(id.Value().(int)), nil
	}
	return tensor.Full[float32](tensor.Shape{8, 8}, 1, f.backend).Raw(), nil
}

func testConfig(perSample, alive int) Config {
	cfg := DefaultConfig()
	cfg.PatchShape = tensor.Shape{4, 4}
	cfg.PatchesPerSample = perSample
	cfg.SamplesAlive = alive
	cfg.Shuffle = false
	cfg.Seed = 1
	return cfg
}

func pullID(t *testing.T, q *PreloadedQueue[int]) int {
	t.Helper()
	b, err := q.Next()
	require.NoError(t, err)
	item, ok := b.Get("id")
	require.True(t, ok)
	img, ok := b.Get("image")
	require.True(t, ok)
	require.Equal(t, tensor.Shape{1, 4, 4}, img.Array().Shape())
	return item.Value().(int)
}

// Three samples, two slots, three patches each: pull 6 refills slot 0.
func TestQueueRefillSchedule(t *testing.T) {
	src := newFakeSource()
	q, err := New([]int{0, 1, 2}, src, src.backend, testConfig(3, 2))
	require.NoError(t, err)
	require.Equal(t, 2, q.SamplesAlive())

	var ids []int
	for i := 0; i < 6; i++ {
		ids = append(ids, pullID(t, q))
	}
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, ids)
	assert.Equal(t, 2, q.Stats().Loads)
	assert.Equal(t, 2, q.PeekSample())

	assert.Equal(t, 2, pullID(t, q))
	assert.Equal(t, 3, q.Stats().Loads)
	assert.Equal(t, []int{2, 1}, q.Resident())

	// Slot 1 is exhausted next and the order wraps back to sample 0.
	assert.Equal(t, 0, pullID(t, q))
	assert.Equal(t, 4, q.Stats().Loads)
	assert.Equal(t, []int{2, 0}, q.Resident())
}

// Within six consecutive pulls of one slot its sample changes exactly once.
func TestQueueSlotLifetime(t *testing.T) {
	src := newFakeSource()
	q, err := New([]int{0, 1, 2}, src, src.backend, testConfig(3, 2))
	require.NoError(t, err)

	var slot0 []int
	for i := 0; i < 12; i++ {
		id := pullID(t, q)
		if i%2 == 0 {
			slot0 = append(slot0, id)
		}
	}
	changes := 0
	for i := 1; i < len(slot0); i++ {
		if slot0[i] != slot0[i-1] {
			changes++
		}
	}
	assert.Equal(t, 1, changes, "slot 0 saw %v", slot0)
}

// When every sample fits, the cycle hands a slot back its own sample and the
// picker is redrawn instead of reloading.
func TestQueueRefreshWithoutReload(t *testing.T) {
	src := newFakeSource()
	q, err := New([]int{0, 1}, src, src.backend, testConfig(2, 0))
	require.NoError(t, err)
	require.Equal(t, 2, q.SamplesAlive())

	for i := 0; i < 20; i++ {
		assert.Equal(t, i%2, pullID(t, q))
	}
	stats := q.Stats()
	assert.Equal(t, 20, stats.Pulls)
	assert.Equal(t, 2, stats.Loads)
	assert.Equal(t, 8, stats.Refreshes)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, src.loads)
}

func TestQueueResidencyBound(t *testing.T) {
	src := newFakeSource()
	samples := []int{0, 1, 2, 3, 4, 5, 6}
	q, err := New(samples, src, src.backend, testConfig(4, 3))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		_, err := q.Next()
		require.NoError(t, err)
		resident := q.Resident()
		require.LessOrEqual(t, len(resident), 3)

		seen := make(map[int]bool)
		for _, id := range resident {
			assert.False(t, seen[id], "sample %d resident twice", id)
			seen[id] = true
		}
	}
	// 67, 67 and 66 pulls per slot at 4 patches a load. Seven samples over
	// three slots never hand a slot back its own sample.
	assert.Equal(t, 51, q.Stats().Loads)
	assert.Zero(t, q.Stats().Refreshes)
}

func TestQueueLoaderErrorPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	src := newFakeSource()
	src.failOnce[1] = true
	q, err := New([]int{0, 1}, src, src.backend, testConfig(1, 2), WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, 0, pullID(t, q))

	_, err = q.Next()
	require.Error(t, err)
	assert.Equal(t, errBoom, err, "source error is returned as is")
	assert.Equal(t, []int{0}, q.Resident())
	assert.Equal(t, 0, q.PeekSample(), "failed sample is used up")
	assert.Contains(t, buf.String(), "queue: load failed")
	assert.Contains(t, buf.String(), "sample=1")

	// Slot 0 is handed back its own sample, then slot 1 gets sample 1 on the
	// next cycle.
	assert.Equal(t, 0, pullID(t, q))
	assert.Equal(t, 1, pullID(t, q))
	assert.Equal(t, []int{0, 1}, q.Resident())
	assert.Equal(t, 3, q.Stats().Pulls)
}

// A sample that never loads costs one error per cycle and the rest of the
// order keeps flowing.
func TestQueueSkipsBrokenSample(t *testing.T) {
	src := newFakeSource()
	src.broken[1] = true
	q, err := New([]int{0, 1, 2, 3}, src, src.backend, testConfig(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 0, pullID(t, q))
	_, err = q.Next()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, q.PeekSample())
	assert.Equal(t, 2, pullID(t, q))
	assert.Equal(t, 3, pullID(t, q))
	assert.Equal(t, 0, pullID(t, q))

	_, err = q.Next()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []int{0, 3}, q.Resident(), "failing slot keeps its sample")
	assert.Equal(t, 2, pullID(t, q))

	served, errs := 0, 0
	for i := 0; i < 40; i++ {
		if _, err := q.Next(); err != nil {
			errs++
			continue
		}
		served++
	}
	// One refill per pull, and one refill in four takes sample 1.
	assert.Equal(t, 30, served)
	assert.Equal(t, 10, errs)
	assert.Zero(t, src.loads[1])
	assert.Equal(t, 35, q.Stats().Pulls)
}

func TestQueueWeightMapErrorPropagates(t *testing.T) {
	backend := cpu.New()
	errWeights := errors.New("no label")
	source := SourceFuncs[string]{
		LoadFunc: func(id string) (patch.Bundle, error) {
			return patch.NewSingle(tensor.Zeros[float32](tensor.Shape{8, 8}, backend).Raw()), nil
		},
		WeightMapFunc: func(patch.Bundle) (*tensor.RawTensor, error) {
			return nil, errWeights
		},
	}
	cfg := DefaultConfig()
	cfg.PatchShape = tensor.Shape{4, 4}

	q, err := New([]string{"a"}, source, backend, cfg)
	require.NoError(t, err)
	_, err = q.Next()
	assert.Equal(t, errWeights, err)
	assert.Empty(t, q.Resident())
}

func TestQueueDrawsFollowWeights(t *testing.T) {
	src := newFakeSource()
	src.weights = func(id int) *tensor.RawTensor {
		w := tensor.Zeros[float32](tensor.Shape{8, 8}, src.backend)
		w.Set(1, 3, 3)
		return w.Raw()
	}
	cfg := testConfig(5, 1)
	cfg.PatchShape = tensor.Shape{3, 3}
	q, err := New([]int{7}, src, src.backend, cfg)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		b, err := q.Next()
		require.NoError(t, err)
		img, _ := b.Get("image")
		assert.Equal(t, tensor.Shape{1, 3, 3}, img.Array().Shape())
	}
	assert.Equal(t, 1, q.Stats().Loads)
	assert.Equal(t, 2, q.Stats().Refreshes)
}

func TestQueueShuffle(t *testing.T) {
	src := newFakeSource()
	samples := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	cfg := testConfig(1, 3)
	cfg.Shuffle = true
	cfg.Seed = 99

	a, err := New(samples, src, src.backend, cfg)
	require.NoError(t, err)
	b, err := New(samples, src, src.backend, cfg)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, samples, "caller slice must not change")
	assert.Equal(t, a.Order(), b.Order())
	assert.ElementsMatch(t, samples, a.Order())
	assert.NotEqual(t, samples, a.Order())
	assert.Equal(t, a.Order()[0], a.PeekSample())

	// The queue shuffles with the same seeded source the generators use.
	want := append([]int(nil), samples...)
	rng := patch.NewRand(cfg.Seed)
	rng.Shuffle(len(want), func(i, j int) { want[i], want[j] = want[j], want[i] })
	assert.Equal(t, want, a.Order())
}

func TestQueueConfigErrors(t *testing.T) {
	src := newFakeSource()

	_, err := New([]int{}, src, src.backend, testConfig(1, 1))
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = New([]int{1}, src, src.backend, testConfig(0, 1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig(1, 1)
	cfg.PatchShape = nil
	_, err = New([]int{1}, src, src.backend, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.PatchShape = tensor.Shape{4, 0}
	_, err = New([]int{1}, src, src.backend, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New[int]([]int{1}, nil, src.backend, testConfig(1, 1))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestQueueSamplesAliveClamp(t *testing.T) {
	src := newFakeSource()
	for _, alive := range []int{-1, 0, 4, 40} {
		q, err := New([]int{0, 1, 2, 3}, src, src.backend, testConfig(1, alive))
		require.NoError(t, err)
		assert.Equal(t, 4, q.SamplesAlive(), "SamplesAlive=%d", alive)
	}
	q, err := New([]int{0, 1, 2, 3}, src, src.backend, testConfig(1, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, q.SamplesAlive())
}

func TestQueueLogsRefills(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src := newFakeSource()
	q, err := New([]int{0}, src, src.backend, testConfig(1, 1), WithLogger(logger))
	require.NoError(t, err)

	pullID(t, q)
	pullID(t, q)
	out := buf.String()
	assert.Contains(t, out, "queue: slot loaded")
	assert.Contains(t, out, "queue: slot refreshed")
	assert.Contains(t, out, "slot=0")
}
