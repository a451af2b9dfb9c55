package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is the load error of assets still queued when the server closes.
var ErrClosed = errors.New("asset server closed")

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// EventKind says what happened to an asset.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventFailed
	EventModified
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	case EventModified:
		return "modified"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports a finished load or reload.
type Event struct {
	Kind   EventKind
	Handle Handle
	Err    error
}

type entry struct {
	handle     Handle
	state      LoadState
	image      image.Image
	settings   ImageSettings
	err        error
	generation uint64
	// dirty is set when the file changes while a load is in flight.
	dirty bool
}

// Server loads images from a file system in the background. Load never
// blocks; callers poll State or drain events to learn the outcome.
type Server struct {
	fsys      fs.FS
	dir       string
	metaCheck MetaCheck
	workers   int
	watch     bool
	logger    *log.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	byID    map[uuid.UUID]*entry
	events  []Event
	closed  bool

	queue   chan string
	pending sync.WaitGroup
	// senders tracks enqueues that found the queue full.
	senders sync.WaitGroup
	done    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	group     *errgroup.Group
	watcher   *watcher
}

// Option configures a Server.
type Option func(*Server)

// WithMetaCheck sets which assets get a meta file lookup.
func WithMetaCheck(check MetaCheck) Option {
	return func(s *Server) {
		s.metaCheck = check
	}
}

// WithWorkers bounds the number of concurrent loads.
func WithWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithWatch reloads loaded assets when their files change. It only has an
// effect for servers created with NewDirServer.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.watch = enabled
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server reading from fsys. Call Start before expecting
// loads to progress.
func NewServer(fsys fs.FS, opts ...Option) *Server {
	s := &Server{
		fsys:    fsys,
		workers: defaultWorkers,
		entries: make(map[string]*entry),
		byID:    make(map[uuid.UUID]*entry),
		queue:   make(chan string, defaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default().WithPrefix("asset")
	}
	return s
}

// NewDirServer creates a server rooted at an on-disk directory.
func NewDirServer(dir string, opts ...Option) *Server {
	s := NewServer(os.DirFS(dir), opts...)
	s.dir = dir
	return s
}

// Start launches the loader workers and, if enabled, the file watcher. They
// stop when ctx is cancelled or Close is called. Only the first call has an effect.
func (s *Server) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		s.group, ctx = errgroup.WithContext(ctx)

		for range s.workers {
			s.group.Go(func() error {
				s.work(ctx)
				return nil
			})
		}

		if s.watch && s.dir != "" {
			s.watcher, err = newWatcher(s.dir, s.logger)
			if err != nil {
				err = fmt.Errorf("watch %s: %w", s.dir, err)
				return
			}
			s.group.Go(func() error {
				return s.watcher.run(ctx, s.reload)
			})
		}

		s.logger.Debug("asset server started", "workers", s.workers, "watch", s.watcher != nil)
	})
	return err
}

// Close stops the workers and fails anything still queued with ErrClosed.
// Loads requested after Close fail immediately.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)

		if s.cancel != nil {
			s.cancel()
			err = s.group.Wait()
		}
		if s.watcher != nil {
			err = errors.Join(err, s.watcher.close())
		}
		s.senders.Wait()

		for {
			select {
			case assetPath := <-s.queue:
				s.finish(assetPath, nil, Meta{}, ErrClosed)
				s.pending.Done()
			default:
				return
			}
		}
	})
	return err
}

// Load returns the handle for assetPath, queueing a load the first time the
// path is seen. Paths are slash separated and relative to the server root.
func (s *Server) Load(assetPath string) Handle {
	assetPath = cleanPath(assetPath)

	s.mu.Lock()
	if e, ok := s.entries[assetPath]; ok {
		s.mu.Unlock()
		return e.handle
	}
	e := &entry{
		handle: Handle{ID: uuid.New(), Path: assetPath},
		state:  Pending,
	}
	s.entries[assetPath] = e
	s.byID[e.handle.ID] = e
	if s.closed {
		s.finishLocked(e, nil, Meta{}, ErrClosed)
		s.mu.Unlock()
		return e.handle
	}
	s.enqueueLocked(assetPath)
	s.mu.Unlock()
	return e.handle
}

// enqueueLocked hands assetPath to the workers. It never blocks: when the
// queue is full a helper goroutine waits for room, giving up once the server
// closes. s.mu must be held and the server open.
func (s *Server) enqueueLocked(assetPath string) {
	s.pending.Add(1)
	select {
	case s.queue <- assetPath:
		return
	default:
	}

	s.senders.Add(1)
	go func() {
		defer s.senders.Done()
		select {
		case s.queue <- assetPath:
		case <-s.done:
			s.finish(assetPath, nil, Meta{}, ErrClosed)
			s.pending.Done()
		}
	}()
}

// reload queues assetPath again if it was loaded before. A change seen while
// a load is in flight is remembered and loaded once that one finishes.
func (s *Server) reload(assetPath string) {
	s.mu.Lock()
	e, ok := s.entries[assetPath]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	if e.state == Pending {
		e.dirty = true
		s.mu.Unlock()
		return
	}
	e.state = Pending
	s.enqueueLocked(assetPath)
	s.mu.Unlock()

	s.logger.Debug("reloading asset", "path", assetPath)
}

// Wait blocks until every queued load has finished.
func (s *Server) Wait() {
	s.pending.Wait()
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case assetPath := <-s.queue:
			img, meta, err := s.load(assetPath)
			s.finish(assetPath, img, meta, err)
			s.pending.Done()
		}
	}
}

func (s *Server) load(assetPath string) (image.Image, Meta, error) {
	if !fs.ValidPath(assetPath) {
		return nil, Meta{}, fmt.Errorf("invalid asset path %q", assetPath)
	}

	var meta Meta
	if s.metaCheck.Applies(assetPath) {
		var err error
		meta, err = readMeta(s.fsys, assetPath)
		if err != nil {
			return nil, Meta{}, fmt.Errorf("read meta for %s: %w", assetPath, err)
		}
	}

	img, err := decodeImage(s.fsys, assetPath)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("load %s: %w", assetPath, err)
	}
	return img, meta, nil
}

// finish records the outcome of a load. If the file changed while it was
// loading, the result is dropped and the asset is queued again.
func (s *Server) finish(assetPath string, img image.Image, meta Meta, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[assetPath]
	if !ok {
		return
	}
	if e.dirty && !s.closed {
		e.dirty = false
		s.enqueueLocked(assetPath)
		return
	}
	s.finishLocked(e, img, meta, err)
}

func (s *Server) finishLocked(e *entry, img image.Image, meta Meta, err error) {
	e.dirty = false
	if err != nil {
		e.state = Failed
		e.err = err
		s.events = append(s.events, Event{Kind: EventFailed, Handle: e.handle, Err: err})
		return
	}

	kind := EventLoaded
	if e.generation > 0 {
		kind = EventModified
	}
	e.state = Loaded
	e.err = nil
	e.image = img
	e.settings = meta.Image
	e.generation++
	s.events = append(s.events, Event{Kind: kind, Handle: e.handle})
}

func (s *Server) lookup(h Handle) *entry {
	return s.byID[h.ID]
}

// State returns the load state of h. Unknown handles are NotLoaded.
func (s *Server) State(h Handle) LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.lookup(h); e != nil {
		return e.state
	}
	return NotLoaded
}

// Image returns the decoded image for h. During a reload the previous image
// stays available.
func (s *Server) Image(h Handle) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(h)
	if e == nil || e.image == nil {
		return nil, false
	}
	return e.image, true
}

// Err returns why h failed to load, or nil.
func (s *Server) Err(h Handle) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.lookup(h); e != nil {
		return e.err
	}
	return nil
}

// Settings returns the meta settings h was loaded with.
func (s *Server) Settings(h Handle) ImageSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.lookup(h); e != nil {
		return e.settings
	}
	return ImageSettings{}
}

// Generation counts successful loads of h; it goes up on every reload.
func (s *Server) Generation(h Handle) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.lookup(h); e != nil {
		return e.generation
	}
	return 0
}

// Snapshot returns the image, settings and generation of h read together, so
// the image always belongs to the generation reported with it. ok is false
// until h has loaded once.
func (s *Server) Snapshot(h Handle) (img image.Image, settings ImageSettings, generation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.lookup(h)
	if e == nil || e.image == nil {
		return nil, ImageSettings{}, 0, false
	}
	return e.image, e.settings, e.generation, true
}

// Drain returns and clears the events recorded since the last call.
func (s *Server) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events
	s.events = nil
	return events
}

// Len returns the number of distinct asset paths requested so far.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cleanPath(assetPath string) string {
	assetPath = filepath.ToSlash(assetPath)
	assetPath = path.Clean(strings.TrimPrefix(assetPath, "./"))
	return strings.TrimPrefix(assetPath, "/")
}
