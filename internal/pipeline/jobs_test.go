package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/doccheck/internal/doctree"
	"github.com/dgallion1/doccheck/internal/structure"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestSource_Name(t *testing.T) {
	if got := (Source{Filename: "a.md"}).Name(); got != "a.md" {
		t.Errorf("expected filename, got %q", got)
	}
	if got := (Source{URL: "https://wiki/view", PageID: "9"}).Name(); got != "https://wiki/view?pageId=9" {
		t.Errorf("expected url with page id, got %q", got)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob(Source{Filename: "t.md"}, Source{Filename: "d.md"}, []string{"safety"})
	if job.ID == "" {
		t.Error("expected generated id")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected queued, got %q", job.Status)
	}
	other := NewJob(Source{}, Source{}, nil)
	if other.ID == job.ID {
		t.Error("expected unique ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusFetching, "fetching"},
		{StatusParsing, "parsing"},
		{StatusChecking, "checking"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	for _, s := range []JobStatus{StatusQueued, StatusFetching, StatusParsing, StatusChecking} {
		if s.Terminal() {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("expected completed and failed to be terminal")
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)
	job.AddError("template: fetch failed")
	job.AddError("target: parse failed")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "template: fetch failed" {
		t.Errorf("expected first error %q, got %q", "template: fetch failed", snap.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJob_OutcomeWhileRunning(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)
	job.SetStatus(StatusChecking, "checking")
	if _, ok := job.Outcome(); ok {
		t.Error("expected no outcome for a running job")
	}
}

func TestJob_OutcomeCompleted(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)
	job.SetSummaries(doctree.Summary{TotalChapters: 3}, doctree.Summary{TotalChapters: 2})
	job.AddWarnings("heading level jump: A > B (H1 -> H3)")
	job.Complete(&structure.Result{
		Passed:          false,
		MissingChapters: []string{"x", "y"},
		StructureIssues: []string{"missing critical top-level chapter: safety"},
	})

	out, ok := job.Outcome()
	if !ok {
		t.Fatal("expected outcome for a completed job")
	}
	if out.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", out.Status)
	}
	if out.Violations != 3 {
		t.Errorf("expected 3 violations, got %d", out.Violations)
	}
	if out.TemplateSummary == nil || out.TemplateSummary.TotalChapters != 3 {
		t.Errorf("unexpected template summary %+v", out.TemplateSummary)
	}
	if len(out.Warnings) != 1 || out.Errors == nil {
		t.Errorf("unexpected warnings %v or errors %v", out.Warnings, out.Errors)
	}
}

func TestJob_OutcomeDisabledCheck(t *testing.T) {
	job := NewJob(Source{}, Source{}, nil)
	job.Complete(nil)
	out, ok := job.Outcome()
	if !ok {
		t.Fatal("expected outcome")
	}
	if out.Structure != nil || out.Violations != 0 {
		t.Errorf("expected null structure and zero violations, got %+v", out)
	}
}

func TestJob_ReleaseSources(t *testing.T) {
	job := NewJob(Source{Filename: "a.md", Data: []byte("# A")}, Source{Filename: "b.md", Data: []byte("# B")}, nil)
	job.ReleaseSources()
	if job.Template.Data != nil || job.Target.Data != nil {
		t.Error("expected uploaded data to be released")
	}
	if job.Template.Filename != "a.md" {
		t.Error("expected filename to survive release")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusChecking, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: time.Now()}
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("running") == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 jobs left, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	if n := store.Cleanup(); n != 0 {
		t.Errorf("expected no evictions, got %d", n)
	}
}

func TestJobStore_ListAndDelete(t *testing.T) {
	store := NewJobStore(time.Hour)
	now := time.Now()
	store.Put(&Job{ID: "b", CreatedAt: now.Add(time.Second)})
	store.Put(&Job{ID: "a", CreatedAt: now})

	jobs := store.List()
	if len(jobs) != 2 || jobs[0].ID != "a" || jobs[1].ID != "b" {
		t.Fatalf("expected jobs ordered by creation, got %v", jobs)
	}
	if !store.Delete("a") {
		t.Error("expected delete of existing job to report true")
	}
	if store.Delete("a") {
		t.Error("expected second delete to report false")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}
