package pipeline

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/doccheck/internal/doctree"
	"github.com/dgallion1/doccheck/internal/fetch"
	"github.com/dgallion1/doccheck/internal/structure"
	"github.com/google/uuid"
)

// JobStatus represents the state of a check job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusParsing   JobStatus = "parsing"
	StatusChecking  JobStatus = "checking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source is one side of a comparison: uploaded bytes or a URL to fetch.
type Source struct {
	Filename string
	Data     []byte
	URL      string
	PageID   string
}

// Name identifies the source in logs and job snapshots.
func (s Source) Name() string {
	if s.URL != "" {
		return fetch.BuildURL(s.URL, s.PageID)
	}
	return s.Filename
}

// Job tracks one template/target comparison.
type Job struct {
	mu sync.Mutex

	ID     string
	Status JobStatus
	Phase  string

	Template         Source
	Target           Source
	CriticalChapters []string

	CreatedAt time.Time
	UpdatedAt time.Time

	templateHash    string
	targetHash      string
	errors          []string
	warnings        []string
	result          *structure.Result
	templateSummary *doctree.Summary
	targetSummary   *doctree.Summary
}

// NewJob creates a queued job with a fresh id.
func NewJob(template, target Source, critical []string) *Job {
	now := time.Now()
	return &Job{
		ID:               uuid.NewString(),
		Status:           StatusQueued,
		Phase:            "queued",
		Template:         template,
		Target:           target,
		CriticalChapters: critical,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// AddWarnings records non-fatal findings.
func (j *Job) AddWarnings(w ...string) {
	if len(w) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w...)
	j.UpdatedAt = time.Now()
}

// SetHashes records the content hashes of both documents.
func (j *Job) SetHashes(template, target string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.templateHash = template
	j.targetHash = target
}

// SetSummaries records the structure summaries of both documents.
func (j *Job) SetSummaries(template, target doctree.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.templateSummary = &template
	j.targetSummary = &target
}

// Complete stores the verdict and marks the job completed. A nil result
// means the structure check was disabled.
func (j *Job) Complete(res *structure.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// ReleaseSources drops uploaded bytes once they are no longer needed.
func (j *Job) ReleaseSources() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Template.Data = nil
	j.Target.Data = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	Template     string    `json:"template"`
	Target       string    `json:"target"`
	TemplateHash string    `json:"template_hash,omitempty"`
	TargetHash   string    `json:"target_hash,omitempty"`
	Errors       []string  `json:"errors"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := slices.Clone(j.errors)
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:           j.ID,
		Status:       j.Status,
		Phase:        j.Phase,
		Template:     j.Template.Name(),
		Target:       j.Target.Name(),
		TemplateHash: j.templateHash,
		TargetHash:   j.targetHash,
		Errors:       errs,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// Outcome is the finished job as reported to clients.
type Outcome struct {
	ID              string            `json:"job_id"`
	Status          JobStatus         `json:"status"`
	Structure       *structure.Result `json:"structure"`
	Violations      int               `json:"violations"`
	TemplateSummary *doctree.Summary  `json:"template_summary"`
	TargetSummary   *doctree.Summary  `json:"target_summary"`
	Warnings        []string          `json:"warnings"`
	Errors          []string          `json:"errors"`
}

// Outcome returns the job result. ok is false while the job is running.
func (j *Job) Outcome() (Outcome, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.Status.Terminal() {
		return Outcome{}, false
	}
	warnings := slices.Clone(j.warnings)
	if warnings == nil {
		warnings = []string{}
	}
	errs := slices.Clone(j.errors)
	if errs == nil {
		errs = []string{}
	}
	return Outcome{
		ID:              j.ID,
		Status:          j.Status,
		Structure:       j.result,
		Violations:      structure.ViolationCount(j.result),
		TemplateSummary: j.templateSummary,
		TargetSummary:   j.targetSummary,
		Warnings:        warnings,
		Errors:          errs,
	}, true
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// List returns every stored job, oldest first.
func (s *JobStore) List() []*Job {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	slices.SortFunc(jobs, func(a, b *Job) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return jobs
}

// Delete removes a job and reports whether it existed.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not updated within the TTL and returns how
// many were removed. Running jobs are kept regardless of age.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
