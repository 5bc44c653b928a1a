package workflow_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/theme"
	"github.com/gsarma/codeit/internal/workflow"
)

// stubProvider implements code.Provider for workflow tests.
type stubProvider struct {
	mu        sync.Mutex
	calls     []code.Request
	executeFn func(ctx context.Context, req code.Request) (*code.Result, error)
}

func (p *stubProvider) Execute(ctx context.Context, req code.Request) (*code.Result, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	if p.executeFn != nil {
		return p.executeFn(ctx, req)
	}
	return &code.Result{}, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

var _ code.Provider = (*stubProvider)(nil)

func newSession(t *testing.T, p code.Provider, versions language.Versions) (*workflow.Session, store.KV) {
	t.Helper()
	kv := store.Scope(store.NewMemory(), "client")
	s, err := workflow.New(context.Background(), workflow.Deps{
		Store:    kv,
		Provider: p,
		Versions: versions,
		Logger:   zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	return s, kv
}

func TestNew_StartsOnDefaultTemplate(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)
	snap := s.Snapshot()
	if snap.Language != "python" {
		t.Errorf("expected python, got %s", snap.Language)
	}
	if snap.Source != `print("Hello World")` {
		t.Errorf("expected python template, got %q", snap.Source)
	}
	if snap.Running || snap.Result != nil || snap.Output != "" {
		t.Errorf("expected idle empty state, got %+v", snap)
	}
}

func TestSelectLanguage_TemplateWhenNothingSaved(t *testing.T) {
	ctx := context.Background()
	for _, d := range language.All() {
		t.Run(d.ID, func(t *testing.T) {
			s, _ := newSession(t, &stubProvider{}, nil)
			if err := s.SelectLanguage(ctx, d.ID); err != nil {
				t.Fatalf("select: %v", err)
			}
			if got := s.Snapshot().Source; got != d.Template {
				t.Errorf("expected template %q, got %q", d.Template, got)
			}
		})
	}
}

func TestSelectLanguage_RestoresEditedSource(t *testing.T) {
	ctx := context.Background()
	s, kv := newSession(t, &stubProvider{}, nil)

	if err := s.SelectLanguage(ctx, "java"); err != nil {
		t.Fatal(err)
	}
	edited := "class Main { /* edited */ }"
	if err := s.SetSource(ctx, edited); err != nil {
		t.Fatal(err)
	}
	if saved, _ := kv.Get(ctx, "code-java"); saved != edited {
		t.Errorf("expected edit persisted under code-java, got %q", saved)
	}

	if err := s.SelectLanguage(ctx, "cpp"); err != nil {
		t.Fatal(err)
	}
	cpp, _ := language.Lookup("cpp")
	if got := s.Snapshot().Source; got != cpp.Template {
		t.Errorf("expected cpp template, got %q", got)
	}

	if err := s.SelectLanguage(ctx, "java"); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Source; got != edited {
		t.Errorf("expected edited source restored, got %q", got)
	}
}

func TestSelectLanguage_EmptySavedFallsBackToTemplate(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, &stubProvider{}, nil)
	if err := s.SetSource(ctx, ""); err != nil {
		t.Fatal(err)
	}
	s.SelectLanguage(ctx, "java")
	s.SelectLanguage(ctx, "python")
	if got := s.Snapshot().Source; got != `print("Hello World")` {
		t.Errorf("expected template for empty saved text, got %q", got)
	}
}

func TestSelectLanguage_ClearsOutputResultAndAnnotations(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return &code.Result{Output: "Error on line 1", ExitCode: 1}, nil
	}}
	s, _ := newSession(t, p, nil)
	s.Run(ctx)
	if len(s.Snapshot().Annotations) != 1 {
		t.Fatal("precondition: expected an annotation after failed run")
	}

	if err := s.SelectLanguage(ctx, "cpp"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Output != "" || snap.Result != nil || len(snap.Annotations) != 0 {
		t.Errorf("expected cleared state, got %+v", snap)
	}
}

func TestSelectLanguage_Unknown(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)
	err := s.SelectLanguage(context.Background(), "cobol")
	if !errors.Is(err, workflow.ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
	if s.Snapshot().Language != "python" {
		t.Error("state must be untouched on unknown language")
	}
}

func TestRun_UnsupportedMakesNoCall(t *testing.T) {
	p := &stubProvider{}
	versions := language.DefaultVersions()
	delete(versions, "python")
	s, _ := newSession(t, p, versions)

	err := s.Run(context.Background())
	if !errors.Is(err, workflow.ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if p.callCount() != 0 {
		t.Errorf("expected no network call, got %d", p.callCount())
	}
	snap := s.Snapshot()
	if snap.Output != workflow.UnsupportedText {
		t.Errorf("expected unsupported message, got %q", snap.Output)
	}
	if snap.Running {
		t.Error("running flag must be cleared")
	}
}

func TestRun_SuccessZeroExit(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return &code.Result{Output: "Hello World\n", Time: 20 * time.Millisecond, Memory: 1024, ExitCode: 0}, nil
	}}
	s, _ := newSession(t, p, nil)
	s.SelectLanguage(ctx, "cpp")
	s.SetStdin("5 6")

	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := p.calls[0]
	if req.Language != "cpp" || req.Version != "10.2.0" || req.Stdin != "5 6" {
		t.Errorf("unexpected request %+v", req)
	}
	cpp, _ := language.Lookup("cpp")
	if len(req.Files) != 1 || req.Files[0].Name != "main.cpp" || req.Files[0].Content != cpp.Template {
		t.Errorf("unexpected files %+v", req.Files)
	}

	snap := s.Snapshot()
	if snap.Output != "Hello World\n" {
		t.Errorf("expected verbatim output, got %q", snap.Output)
	}
	if snap.Result == nil || snap.Result.ExitCode != 0 || snap.Result.Memory != 1024 || snap.Result.Time != 0.02 {
		t.Errorf("unexpected result %+v", snap.Result)
	}
	if len(snap.Annotations) != 0 {
		t.Errorf("expected no annotations on exit 0, got %+v", snap.Annotations)
	}
	if snap.Running {
		t.Error("running flag must be cleared")
	}
}

func TestRun_EmptyOutputPlaceholder(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)
	s.Run(context.Background())
	if got := s.Snapshot().Output; got != workflow.NoOutputText {
		t.Errorf("expected %q, got %q", workflow.NoOutputText, got)
	}
}

func TestRun_NonZeroExitAnnotatesLine(t *testing.T) {
	ctx := context.Background()
	output := "Traceback (most recent call last):\n  File \"main.py\", line 7, in <module>\nNameError: x"
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return &code.Result{Output: output, ExitCode: 1}, nil
	}}
	s, _ := newSession(t, p, nil)
	s.SetSource(ctx, strings.Repeat("pass\n", 6)+"print(x)\n")

	if err := s.Run(ctx); err != nil {
		t.Fatalf("non-zero exit is not an error, got %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Annotations) != 1 {
		t.Fatalf("expected one annotation, got %+v", snap.Annotations)
	}
	a := snap.Annotations[0]
	if a.StartLine != 7 || a.EndLine != 7 || a.StartColumn != 1 || a.EndColumn != len("print(x)")+1 {
		t.Errorf("unexpected range %+v", a)
	}
	if a.Message != "Traceback (most recent call last):" {
		t.Errorf("expected first output line as message, got %q", a.Message)
	}
	if a.Severity != workflow.SeverityError {
		t.Errorf("expected error severity, got %s", a.Severity)
	}
	if snap.Result == nil || snap.Result.ExitCode != 1 {
		t.Errorf("expected result with exit code 1, got %+v", snap.Result)
	}
}

func TestRun_NonZeroExitWithoutLineReference(t *testing.T) {
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return &code.Result{Output: "Segmentation fault", ExitCode: 139}, nil
	}}
	s, _ := newSession(t, p, nil)
	s.Run(context.Background())
	if got := s.Snapshot().Annotations; len(got) != 0 {
		t.Errorf("expected no annotation, got %+v", got)
	}
}

func TestRun_ServiceFailure(t *testing.T) {
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return nil, &code.ServiceError{Provider: "piston", StatusCode: 429, Message: "Requests are limited to 5 per second"}
	}}
	s, _ := newSession(t, p, nil)

	err := s.Run(context.Background())
	var se *code.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected wrapped ServiceError, got %v", err)
	}
	snap := s.Snapshot()
	if snap.Output != "Error: Requests are limited to 5 per second" {
		t.Errorf("unexpected output %q", snap.Output)
	}
	if snap.Result != nil {
		t.Errorf("no result expected on failure, got %+v", snap.Result)
	}
	if snap.Running || s.Running() {
		t.Error("running flag must be cleared after failure")
	}
}

func TestRun_TransportFailure(t *testing.T) {
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	s, _ := newSession(t, p, nil)
	s.Run(context.Background())
	if got := s.Snapshot().Output; got != "Error: dial tcp: connection refused" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRun_SecondTriggerRejectedWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		close(started)
		<-release
		return &code.Result{Output: "done"}, nil
	}}
	s, _ := newSession(t, p, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	<-started

	snap := s.Snapshot()
	if !snap.Running || snap.Output != workflow.RunningText {
		t.Errorf("expected running state with placeholder, got %+v", snap)
	}
	if err := s.Run(context.Background()); !errors.Is(err, workflow.ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if p.callCount() != 1 {
		t.Errorf("expected exactly one call, got %d", p.callCount())
	}
	if s.Running() {
		t.Error("running flag must be cleared")
	}
}

func TestRun_ClearsPreviousAnnotationsOnSuccess(t *testing.T) {
	exit := 1
	p := &stubProvider{executeFn: func(context.Context, code.Request) (*code.Result, error) {
		return &code.Result{Output: "error at line 1", ExitCode: exit}, nil
	}}
	s, _ := newSession(t, p, nil)
	s.Run(context.Background())
	if len(s.Snapshot().Annotations) != 1 {
		t.Fatal("precondition: expected annotation")
	}
	exit = 0
	s.Run(context.Background())
	if got := s.Snapshot().Annotations; len(got) != 0 {
		t.Errorf("expected annotations cleared, got %+v", got)
	}
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, &stubProvider{}, nil)
	s.SelectLanguage(ctx, "java")
	s.SetSource(ctx, "class Main {}")

	f := s.Download()
	if f.Name != "code.java" {
		t.Errorf("expected code.java, got %s", f.Name)
	}
	if string(f.Content) != "class Main {}" {
		t.Errorf("expected exact source, got %q", f.Content)
	}
	if !strings.HasPrefix(f.ContentType, "text/plain") {
		t.Errorf("expected text/plain, got %s", f.ContentType)
	}
}

func TestThemeSync(t *testing.T) {
	attr := theme.NewAttribute("light")
	s, err := workflow.New(context.Background(), workflow.Deps{
		Store:    store.Scope(store.NewMemory(), "c"),
		Provider: &stubProvider{},
		Theme:    attr,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var kinds []workflow.EventKind
	cancel := s.Subscribe(func(e workflow.Event) { kinds = append(kinds, e.Kind) })
	defer cancel()

	if got := s.Snapshot().EditorTheme; got != theme.EditorLight {
		t.Fatalf("expected light editor theme, got %s", got)
	}
	attr.Set("cyberpunk")
	if got := s.Snapshot().EditorTheme; got != theme.EditorDark {
		t.Errorf("expected vs-dark after cyberpunk, got %s", got)
	}
	attr.Set("dark") // same editor theme, no event
	attr.Set("aqua")
	if got := s.Snapshot().EditorTheme; got != theme.EditorLight {
		t.Errorf("expected light after aqua, got %s", got)
	}
	if len(kinds) != 2 {
		t.Errorf("expected two theme events, got %v", kinds)
	}

	s.Close()
	attr.Set("dark")
	if got := s.Snapshot().EditorTheme; got != theme.EditorLight {
		t.Error("closed session must stop following the theme")
	}
}

func TestSubscribe_ReceivesChanges(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)

	var events []workflow.Event
	cancel := s.Subscribe(func(e workflow.Event) { events = append(events, e) })
	s.SetStdin("42")
	cancel()
	s.SetStdin("43")

	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Kind != workflow.EventStdin || events[0].State.Stdin != "42" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestEvents_SeqIncreases(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)

	first := s.SnapshotEvent()
	if first.Kind != workflow.EventSnapshot {
		t.Errorf("expected snapshot kind, got %s", first.Kind)
	}

	var events []workflow.Event
	cancel := s.Subscribe(func(e workflow.Event) { events = append(events, e) })
	defer cancel()
	s.SetStdin("1")
	if err := s.SelectLanguage(context.Background(), "python"); err != nil {
		t.Fatal(err)
	}

	last := first.Seq
	for _, e := range events {
		if e.Seq <= last {
			t.Fatalf("expected increasing seq, got %d after %d", e.Seq, last)
		}
		last = e.Seq
	}
	if got := s.SnapshotEvent().Seq; got != last {
		t.Errorf("snapshot seq should match the last event, got %d want %d", got, last)
	}
}

func TestEvents_HighestSeqCarriesFinalState(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)

	var mu sync.Mutex
	var latest workflow.Event
	cancel := s.Subscribe(func(e workflow.Event) {
		mu.Lock()
		if e.Seq > latest.Seq {
			latest = e
		}
		mu.Unlock()
	})
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetStdin(strings.Repeat("x", i))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if latest.State.Stdin != s.Snapshot().Stdin {
		t.Errorf("highest seq has stdin %q, session has %q", latest.State.Stdin, s.Snapshot().Stdin)
	}
}

func TestClose_ClosesDone(t *testing.T) {
	s, _ := newSession(t, &stubProvider{}, nil)

	select {
	case <-s.Done():
		t.Fatal("done closed before Close")
	default:
	}

	var got int
	s.Subscribe(func(workflow.Event) { got++ })
	s.Close()
	s.Close()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after Close")
	}
	s.SetStdin("late")
	if got != 0 {
		t.Error("closed session must not notify subscribers")
	}
}
