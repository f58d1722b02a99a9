package workflow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"sketch2story/backend"
)

// Gateway is the generation backend as seen by the workflow
type Gateway interface {
	ProcessImage(ctx context.Context, path string) (string, error)
	GenerateStory(ctx context.Context, req *backend.StoryRequest) (*backend.StoryResponse, error)
	Voices(ctx context.Context) (*backend.VoicesResponse, error)
	VocabularyLevels(ctx context.Context) (*backend.LevelsResponse, error)
	Health(ctx context.Context) (*backend.HealthResponse, error)
}

var _ Gateway = (*backend.Client)(nil)

// Timeouts bound each kind of gateway call
type Timeouts struct {
	Analyze  time.Duration
	Generate time.Duration
	Catalog  time.Duration
}

// DefaultTimeouts returns the bounds used when none are configured
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Analyze:  2 * time.Minute,
		Generate: 4 * time.Minute,
		Catalog:  15 * time.Second,
	}
}

// Orchestrator drives a Session against a Gateway
type Orchestrator struct {
	session  *Session
	gateway  Gateway
	timeouts Timeouts
	logger   *slog.Logger
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithTimeouts overrides the per-call bounds; zero fields keep their defaults
func WithTimeouts(t Timeouts) OrchestratorOption {
	return func(o *Orchestrator) {
		if t.Analyze > 0 {
			o.timeouts.Analyze = t.Analyze
		}
		if t.Generate > 0 {
			o.timeouts.Generate = t.Generate
		}
		if t.Catalog > 0 {
			o.timeouts.Catalog = t.Catalog
		}
	}
}

// WithLogger sets the orchestrator's logger
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator wires a session to a gateway
func NewOrchestrator(session *Session, gateway Gateway, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		session:  session,
		gateway:  gateway,
		timeouts: DefaultTimeouts(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Session() *Session    { return o.session }
func (o *Orchestrator) Logger() *slog.Logger { return o.logger }

// Analyze captions the selected file. It returns the session error, if any;
// a call that could not start returns ErrBusy.
func (o *Orchestrator) Analyze(ctx context.Context) error {
	req, ok := o.session.BeginAnalyze()
	if !ok {
		return ErrBusy
	}
	caption, err := o.RunAnalyze(ctx, req)
	o.session.FinishAnalyze(req, caption, err)
	return o.session.Err()
}

// RunAnalyze performs the gateway half of a caption request under the analyze timeout
func (o *Orchestrator) RunAnalyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Analyze)
	defer cancel()

	start := time.Now()
	caption, err := o.gateway.ProcessImage(ctx, req.Path)
	if err != nil {
		o.logger.Error("image analysis failed", "path", req.Path, "error", err, "latency", time.Since(start))
		return "", err
	}
	o.logger.Info("image analyzed", "path", req.Path, "caption", caption, "latency", time.Since(start))
	return caption, nil
}

// Generate requests a story for the current caption and parameters. Blank
// keywords or a request in flight return ErrBusy without touching the session.
func (o *Orchestrator) Generate(ctx context.Context) error {
	req, ok := o.session.BeginGenerate()
	if !ok {
		return ErrBusy
	}
	resp, err := o.RunGenerate(ctx, req)
	o.session.FinishGenerate(req, resp, err)
	return o.session.Err()
}

// RunGenerate performs the gateway half of a story request under the generate timeout
func (o *Orchestrator) RunGenerate(ctx context.Context, req GenerateRequest) (*backend.StoryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Generate)
	defer cancel()

	body := req.Body
	start := time.Now()
	resp, err := o.gateway.GenerateStory(ctx, &body)
	if err != nil {
		o.logger.Error("story generation failed", "error", err, "latency", time.Since(start))
		return nil, err
	}
	o.logger.Info("story generated",
		"words", len(resp.VocabularyWords),
		"audio", resp.AudioGenerated,
		"model", resp.Model,
		"latency", time.Since(start),
	)
	if resp.AudioError != "" {
		o.logger.Warn("narration not generated", "reason", resp.AudioError)
	}
	return resp, nil
}

// CatalogResult carries both catalog fetches
type CatalogResult struct {
	Voices    *backend.VoicesResponse
	VoicesErr error
	Levels    *backend.LevelsResponse
	LevelsErr error
}

// FetchCatalogs fetches voices and levels concurrently. Failures are logged and
// reported in the result; it never fails as a whole.
func (o *Orchestrator) FetchCatalogs(ctx context.Context) CatalogResult {
	ctx, cancel := context.WithTimeout(ctx, o.timeouts.Catalog)
	defer cancel()

	var res CatalogResult
	var g errgroup.Group
	g.Go(func() error {
		res.Voices, res.VoicesErr = o.gateway.Voices(ctx)
		if res.VoicesErr != nil {
			o.logger.Warn("failed to load voices", "error", res.VoicesErr)
		}
		return nil
	})
	g.Go(func() error {
		res.Levels, res.LevelsErr = o.gateway.VocabularyLevels(ctx)
		if res.LevelsErr != nil {
			o.logger.Warn("failed to load vocabulary levels", "error", res.LevelsErr)
		}
		return nil
	})
	_ = g.Wait()
	return res
}

// LoadCatalogs fetches both catalogs and applies them to the session
func (o *Orchestrator) LoadCatalogs(ctx context.Context) {
	o.Apply(o.FetchCatalogs(ctx))
}

// Apply stores fetched catalogs in the session
func (o *Orchestrator) Apply(res CatalogResult) {
	o.session.ApplyVoices(res.Voices, res.VoicesErr)
	o.session.ApplyLevels(res.Levels, res.LevelsErr)
	c := o.session.Catalogs()
	o.logger.Debug("catalogs applied", "voices", len(c.Voices), "levels", len(c.Levels))
}
