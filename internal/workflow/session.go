// Package workflow implements the edit/run/annotate workflow of one editor
// tab: language selection with saved-or-template source, a single in-flight
// run against the execution service, error line annotation, source download
// and editor theme sync.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/metrics"
	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/theme"
)

// Texts shown in the output area.
const (
	RunningText     = "Running..."
	NoOutputText    = "No output"
	UnsupportedText = "Unsupported language or version"
	errorPrefix     = "Error: "
)

var (
	// ErrUnsupportedLanguage is returned by Run when the language has no
	// pinned version. No network call is made.
	ErrUnsupportedLanguage = code.ErrUnsupportedLanguage
	// ErrRunInProgress is returned by Run while another run holds the flag.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrUnknownLanguage is returned by SelectLanguage for ids outside the fixed set.
	ErrUnknownLanguage = errors.New("unknown language")
)

// Deps are the collaborators of a Session. Theme and Logger may be nil.
type Deps struct {
	Store    store.KV
	Provider code.Provider
	Versions language.Versions
	Theme    *theme.Attribute
	Logger   *zap.Logger
}

// ExecInfo is the timing and exit status of the last successful call.
type ExecInfo struct {
	// Time is the elapsed time in seconds.
	Time     float64 `json:"time"`
	Memory   int64   `json:"memory"`
	ExitCode int     `json:"code"`
	Signal   string  `json:"signal,omitempty"`
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	Language    string       `json:"language"`
	Source      string       `json:"source"`
	Stdin       string       `json:"stdin"`
	Output      string       `json:"output"`
	Result      *ExecInfo    `json:"result"`
	Running     bool         `json:"running"`
	Annotations []Annotation `json:"annotations"`
	EditorTheme string       `json:"editor_theme"`
}

// Session is the state of one editor tab. It is safe for concurrent use.
type Session struct {
	kv       store.KV
	provider code.Provider
	versions language.Versions
	logger   *zap.Logger

	running atomic.Bool

	mu          sync.Mutex
	lang        language.Descriptor
	source      string
	stdin       string
	output      string
	result      *ExecInfo
	annotations []Annotation
	editorTheme string
	seq         uint64

	subsMu sync.Mutex
	nextID int
	subs   map[int]func(Event)

	unwatchTheme func()
	closeOnce    sync.Once
	done         chan struct{}
}

// New creates a session on the default language, loading its saved source.
func New(ctx context.Context, deps Deps) (*Session, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	versions := deps.Versions
	if versions == nil {
		versions = language.DefaultVersions()
	}
	s := &Session{
		kv:          deps.Store,
		provider:    deps.Provider,
		versions:    versions,
		logger:      logger,
		editorTheme: theme.EditorTheme(theme.Default),
		subs:        make(map[int]func(Event)),
		done:        make(chan struct{}),
	}

	lang, _ := language.Lookup(language.Default)
	src, err := s.load(ctx, lang)
	if err != nil {
		return nil, err
	}
	s.lang = lang
	s.source = src

	if deps.Theme != nil {
		s.editorTheme = theme.EditorTheme(deps.Theme.Get())
		s.unwatchTheme = deps.Theme.Subscribe(s.syncTheme)
	}
	return s, nil
}

// Close detaches the session from the theme attribute, drops all
// subscribers and closes Done. Calling it again has no effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unwatchTheme != nil {
			s.unwatchTheme()
		}
		s.subsMu.Lock()
		s.subs = make(map[int]func(Event))
		s.subsMu.Unlock()
		close(s.done)
	})
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Language:    s.lang.ID,
		Source:      s.source,
		Stdin:       s.stdin,
		Output:      s.output,
		Running:     s.running.Load(),
		Annotations: append([]Annotation(nil), s.annotations...),
		EditorTheme: s.editorTheme,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// SelectLanguage switches to id, loading its saved source or starter
// template, and clears output, result and annotations.
func (s *Session) SelectLanguage(ctx context.Context, id string) error {
	lang, ok := language.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, id)
	}

	s.mu.Lock()
	src, err := s.load(ctx, lang)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lang = lang
	s.source = src
	s.output = ""
	s.result = nil
	s.annotations = nil
	s.mu.Unlock()

	s.publish(EventLanguage, EventSource, EventOutput, EventResult, EventAnnotations)
	return nil
}

// load returns the saved source for lang, falling back to its template when
// nothing or an empty text was saved.
func (s *Session) load(ctx context.Context, lang language.Descriptor) (string, error) {
	saved, err := s.kv.Get(ctx, store.CodeKey(lang.ID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("load %s source: %w", lang.ID, err)
	}
	if saved == "" {
		return lang.Template, nil
	}
	return saved, nil
}

// SetSource replaces the source text and persists it under the current
// language.
func (s *Session) SetSource(ctx context.Context, text string) error {
	s.mu.Lock()
	if err := s.kv.Set(ctx, store.CodeKey(s.lang.ID), text); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save %s source: %w", s.lang.ID, err)
	}
	s.source = text
	s.mu.Unlock()

	s.publish(EventSource)
	return nil
}

// SetStdin replaces the stdin text.
func (s *Session) SetStdin(text string) {
	s.mu.Lock()
	s.stdin = text
	s.mu.Unlock()

	s.publish(EventStdin)
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Run submits the current source and stdin to the execution service. The
// outcome is always reflected in the session output; the returned error
// additionally reports why a run produced no result. A non-zero exit code is
// a normal result and returns nil.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer func() {
		s.running.Store(false)
		s.publish(EventRunning)
	}()

	s.mu.Lock()
	lang, src, stdin := s.lang, s.source, s.stdin
	s.output = RunningText
	s.result = nil
	s.annotations = nil
	s.mu.Unlock()
	s.publish(EventRunning, EventOutput, EventResult, EventAnnotations)

	version := s.versions.Version(lang.ID)
	if version == "" {
		s.setOutput(UnsupportedText)
		metrics.ObserveRun(lang.ID, metrics.OutcomeUnsupported, 0)
		return ErrUnsupportedLanguage
	}

	start := time.Now()
	res, err := s.provider.Execute(ctx, code.Request{
		Language: lang.ID,
		Version:  version,
		Files:    []code.File{{Name: lang.SourceFile(), Content: src}},
		Stdin:    stdin,
	})
	elapsed := time.Since(start)
	if err != nil {
		s.setOutput(errorPrefix + code.Message(err))
		metrics.ObserveRun(lang.ID, metrics.OutcomeError, elapsed)
		s.logger.Warn("run failed", zap.String("language", lang.ID), zap.Error(err))
		return fmt.Errorf("run %s: %w", lang.ID, err)
	}

	output := res.Output
	if output == "" {
		output = NoOutputText
	}
	info := &ExecInfo{
		Time:     res.Time.Seconds(),
		Memory:   res.Memory,
		ExitCode: res.ExitCode,
		Signal:   res.Signal,
	}

	s.mu.Lock()
	s.output = output
	s.result = info
	if res.ExitCode != 0 {
		s.annotations = Annotate(res.Output, s.source)
	} else {
		s.annotations = nil
	}
	s.mu.Unlock()
	s.publish(EventOutput, EventResult, EventAnnotations)

	outcome := metrics.OutcomeOK
	if res.ExitCode != 0 {
		outcome = metrics.OutcomeNonZeroExit
	}
	metrics.ObserveRun(lang.ID, outcome, elapsed)
	s.logger.Debug("run finished",
		zap.String("language", lang.ID),
		zap.Int("exitCode", res.ExitCode),
		zap.Duration("elapsed", elapsed))
	return nil
}

func (s *Session) setOutput(text string) {
	s.mu.Lock()
	s.output = text
	s.mu.Unlock()
	s.publish(EventOutput)
}

// File is a downloadable copy of the source.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Download returns the current source as code.<ext>.
func (s *Session) Download() File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return File{
		Name:        s.lang.DownloadName(),
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(s.source),
	}
}

func (s *Session) syncTheme(name string) {
	editor := theme.EditorTheme(name)
	s.mu.Lock()
	changed := editor != s.editorTheme
	s.editorTheme = editor
	s.mu.Unlock()
	if changed {
		s.publish(EventTheme)
	}
}
