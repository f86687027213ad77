package scene

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/Carmen-Shannon/oxy-skin/engine/profiler"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-skin/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNilCharacter       = errors.New("character is nil")
	ErrDuplicateCharacter = errors.New("character name already in use")
	ErrReleased           = errors.New("scene has been released")
	ErrRendererChanged    = errors.New("scene is already drawing through another renderer")
)

// FrameReport is the result of evaluating one character in an Update.
type FrameReport struct {
	Character     string
	AnimationTime float64
	Matrices      []mgl32.Mat4
	Err           error
}

// modelResources are the GPU resources shared by every character instancing one model.
type modelResources struct {
	meshes    []bind_group_provider.BindGroupProvider
	materials []material.Material // one per mesh
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu       *sync.RWMutex
	name     string
	logger   *log.Logger
	released bool

	characters map[string]Character
	order      []string
	clock      float64

	profiler *profiler.Profiler

	// computePool evaluates poses. Workers persist across updates.
	// poolMu is held for reading by every Update and for writing by Release, so the
	// pool is never stopped while tasks are being submitted or awaited.
	poolMu         *sync.RWMutex
	computePool    worker.DynamicWorkerPool
	computeWorkers int

	// GPU state, bound to the first renderer passed to Draw
	r         renderer.Renderer
	resources map[model.Model]*modelResources
	palettes  map[string]bind_group_provider.BindGroupProvider
}

// Scene holds placed characters, evaluates their poses in parallel and draws them.
// Characters share models and clips read-only; each owns its animator and bone registry.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// AddCharacter adds a character. Names are unique within a scene.
	//
	// Parameters:
	//   - c: the character
	//
	// Returns:
	//   - error: ErrNilCharacter, ErrDuplicateCharacter or ErrReleased
	AddCharacter(c Character) error

	// RemoveCharacter removes a character by name.
	//
	// Parameters:
	//   - name: the character name
	//
	// Returns:
	//   - bool: true if the character was present
	RemoveCharacter(name string) bool

	// Character returns the character with the given name, or nil.
	//
	// Parameters:
	//   - name: the character name
	//
	// Returns:
	//   - Character: the character or nil
	Character(name string) Character

	// Characters returns every character in insertion order.
	//
	// Returns:
	//   - []Character: the characters
	Characters() []Character

	// Time returns the clock advanced by Advance.
	//
	// Returns:
	//   - float64: the scene time in seconds
	Time() float64

	// Update evaluates the pose of every enabled character at the given playback time.
	// Poses are computed in parallel on the scene's worker pool and Update returns once all are done.
	//
	// Parameters:
	//   - seconds: elapsed playback time in seconds
	//
	// Returns:
	//   - []FrameReport: one report per enabled character, in insertion order
	Update(seconds float64) []FrameReport

	// Advance moves the scene clock forward by delta seconds and updates at the new time.
	//
	// Parameters:
	//   - delta: seconds to advance
	//
	// Returns:
	//   - []FrameReport: the reports of the update
	Advance(delta float64) []FrameReport

	// Draw uploads any missing GPU resources, stages every enabled character's bone palette and
	// model matrix, flushes, and records the draws. Meshes and materials are uploaded once per model.
	//
	// Parameters:
	//   - r: the renderer, which must be the same on every call
	//
	// Returns:
	//   - error: the joined errors of every character that could not be drawn
	Draw(r renderer.Renderer) error

	// Release stops the worker pool. The renderer is owned by the caller and not released.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a new Scene and starts its worker pool.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		poolMu:         &sync.RWMutex{},
		name:           name,
		logger:         log.Default(),
		characters:     make(map[string]Character),
		computeWorkers: max(runtime.NumCPU()-1, 1),
		resources:      make(map[model.Model]*modelResources),
		palettes:       make(map[string]bind_group_provider.BindGroupProvider),
	}

	for _, option := range options {
		option(s)
	}

	// Queue size of 256 leaves headroom for large crowds; SubmitTask blocks when it is full.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) AddCharacter(c Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCharacter(c)
}

func (s *scene) addCharacter(c Character) error {
	if s.released {
		return ErrReleased
	}
	if c == nil {
		return ErrNilCharacter
	}
	if _, ok := s.characters[c.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCharacter, c.Name())
	}
	s.characters[c.Name()] = c
	s.order = append(s.order, c.Name())
	return nil
}

func (s *scene) RemoveCharacter(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[name]; !ok {
		return false
	}
	delete(s.characters, name)
	// The palette stays owned by the renderer and is freed with it.
	delete(s.palettes, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *scene) Character(name string) Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.characters[name]
}

func (s *scene) Characters() []Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Character, len(s.order))
	for i, name := range s.order {
		out[i] = s.characters[name]
	}
	return out
}

func (s *scene) Time() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// enabledCharacters snapshots the enabled characters in insertion order.
func (s *scene) enabledCharacters() []Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Character, 0, len(s.order))
	for _, name := range s.order {
		if c := s.characters[name]; c.Enabled() {
			out = append(out, c)
		}
	}
	return out
}

func (s *scene) Update(seconds float64) []FrameReport {
	s.poolMu.RLock()
	defer s.poolMu.RUnlock()

	s.mu.RLock()
	released := s.released
	s.mu.RUnlock()
	if released {
		return nil
	}

	start := time.Now()
	chars := s.enabledCharacters()
	reports := make([]FrameReport, len(chars))

	// Each task writes only its own report slot and touches only its own animator.
	var wg sync.WaitGroup
	for i, c := range chars {
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				res := c.Animator().ComputePose(seconds)
				reports[i] = FrameReport{
					Character:     c.Name(),
					AnimationTime: res.AnimationTime,
					Matrices:      res.Matrices,
					Err:           res.Err,
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if s.profiler != nil {
		failures := 0
		for _, r := range reports {
			if r.Err != nil {
				failures++
			}
		}
		s.profiler.Record(len(reports), failures, time.Since(start))
		s.profiler.Tick()
	}
	return reports
}

func (s *scene) Advance(delta float64) []FrameReport {
	s.mu.Lock()
	s.clock += delta
	now := s.clock
	s.mu.Unlock()
	return s.Update(now)
}

func (s *scene) Draw(r renderer.Renderer) error {
	if r == nil {
		return errors.New("scene: Draw requires a renderer")
	}
	chars := s.enabledCharacters()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.r == nil {
		s.r = r
	} else if s.r != r {
		return ErrRendererChanged
	}

	var errs []error
	drawable := make([]Character, 0, len(chars))
	for _, c := range chars {
		if err := s.stageCharacter(r, c); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		drawable = append(drawable, c)
	}

	r.Flush()

	for _, c := range drawable {
		res := s.resources[c.Model()]
		palette := s.palettes[c.Name()]
		for i, mesh := range res.meshes {
			if err := r.Draw(mesh, palette, res.materials[i].BindGroupProvider()); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// stageCharacter uploads whatever the character is missing and stages its per-frame uniforms.
func (s *scene) stageCharacter(r renderer.Renderer, c Character) error {
	m := c.Model()
	if m == nil {
		return errors.New("character has no model")
	}
	if _, ok := s.resources[m]; !ok {
		res, err := s.uploadModel(r, m)
		if err != nil {
			return err
		}
		s.resources[m] = res
	}

	palette, ok := s.palettes[c.Name()]
	if !ok {
		var err error
		palette, err = r.NewBonePalette(c.Name() + "/palette")
		if err != nil {
			return err
		}
		s.palettes[c.Name()] = palette
	}

	if err := r.StageBones(palette, c.Animator().BoneMatrices()); err != nil {
		return err
	}
	return r.StageModelMatrix(palette, c.ModelMatrix())
}

// uploadModel creates the mesh buffers of a model and one material per distinct material index.
func (s *scene) uploadModel(r renderer.Renderer, m model.Model) (*modelResources, error) {
	res := &modelResources{}
	byIndex := make(map[int]material.Material)
	for _, mesh := range m.Meshes() {
		provider, err := r.UploadMesh(fmt.Sprintf("%s/%s", m.Name(), mesh.Name), mesh)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
		}

		mat, ok := byIndex[mesh.MaterialIndex]
		if !ok {
			mat, err = r.UploadMaterial(m.Material(mesh.MaterialIndex))
			if err != nil {
				return nil, fmt.Errorf("mesh %q material: %w", mesh.Name, err)
			}
			byIndex[mesh.MaterialIndex] = mat
		}

		res.meshes = append(res.meshes, provider)
		res.materials = append(res.materials, mat)
	}
	s.logger.Printf("[Scene] %s: uploaded model %q (%d meshes, %d materials)", s.name, m.Name(), len(res.meshes), len(byIndex))
	return res, nil
}

func (s *scene) Release() {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.computePool.Stop()
	s.resources = make(map[model.Model]*modelResources)
	s.palettes = make(map[string]bind_group_provider.BindGroupProvider)
	s.r = nil
}
