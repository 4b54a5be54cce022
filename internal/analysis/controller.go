package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/genoassist-br/genoassist/internal/logger"
)

// Controller owns the display state of the analysis form. It allows one
// submission at a time and always settles it into Success or Failure.
type Controller struct {
	analyzer Analyzer
	log      *logger.Logger

	mu    sync.RWMutex
	state State
}

// NewController creates a controller in the Idle state
func NewController(analyzer Analyzer, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		analyzer: analyzer,
		log:      log.WithComponent("controller"),
		state:    idleState(),
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CanSubmit reports whether the submit control is enabled for variant
func (c *Controller) CanSubmit(variant string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.state.Loading() && (Request{Variant: variant}).Valid()
}

// Begin validates req and enters Loading. Rejections leave the state as it
// was and never reach the network.
func (c *Controller) Begin(req Request) (*Submission, error) {
	if !req.Valid() {
		c.log.Debug("submission skipped: empty variant")
		return nil, ErrEmptyVariant
	}
	req = req.Normalized()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading() {
		c.log.DebugWithFields("submission rejected: request in flight", []logger.Field{logger.Variant(req.Variant)})
		return nil, ErrRequestInFlight
	}

	sub := &Submission{controller: c, req: req}
	c.state = loadingState(req.Variant)
	c.log.InfoWithFields("analysis started", []logger.Field{logger.Variant(req.Variant)})
	return sub, nil
}

// Submit runs a whole submission and returns the settled state
func (c *Controller) Submit(ctx context.Context, req Request) (State, error) {
	sub, err := c.Begin(req)
	if err != nil {
		return c.State(), err
	}
	return sub.Run(ctx), nil
}

// Reset returns a settled controller to Idle
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Loading() {
		return ErrNotSettled
	}
	c.state = idleState()
	return nil
}

// settle records the outcome of the in-flight submission. Begin and Reset
// refuse to act while Loading, so the loading submission is the only one
// that can settle.
func (c *Controller) settle(next State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = next
	return next
}

// Submission is one in-flight analysis request
type Submission struct {
	controller *Controller
	req        Request
	once       sync.Once
	result     State
}

// Request returns the normalized request being submitted
func (s *Submission) Request() Request {
	return s.req
}

// Run performs the single network call and settles the controller. Extra
// calls return the first result without issuing another request.
func (s *Submission) Run(ctx context.Context) State {
	s.once.Do(func() {
		s.result = s.run(ctx)
	})
	return s.result
}

func (s *Submission) run(ctx context.Context) (settled State) {
	c := s.controller
	variant := s.req.Variant
	start := time.Now()

	// Stays a transport failure unless the call returns normally.
	next := failureState(variant, NewTransportError(errors.New("analysis did not complete")))
	defer func() {
		settled = c.settle(next)
		c.log.InfoWithFields("analysis settled", []logger.Field{
			logger.Variant(variant), logger.F("phase", next.Phase), logger.Duration(time.Since(start)),
		})
	}()

	report, err := c.analyzer.Analyze(ctx, s.req)
	switch {
	case err != nil:
		next = failureState(variant, AsAnalysisError(err))
	case report == nil:
		next = failureState(variant, NewTransportError(errors.New("empty analysis result")))
	default:
		next = successState(variant, report)
	}
	return next
}
