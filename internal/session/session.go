// Package session keeps the converter's input state and reruns the
// conversion whenever one of the inputs changes.
package session

import (
	"context"
	"currency-converter/internal/catalog"
	"currency-converter/internal/entity"
	"currency-converter/internal/metrics"
	"currency-converter/internal/service"
	"currency-converter/internal/usecase"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type State int

const (
	Idle State = iota
	AwaitingConversion
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConversion:
		return "awaiting_conversion"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Choice int

const (
	Cancel Choice = iota
	Retry
)

func (c Choice) String() string {
	if c == Retry {
		return "retry"
	}
	return "cancel"
}

// Prompter shows the rates unavailable dialog and blocks until it is answered.
type Prompter interface {
	AskRetry(ctx context.Context, cause error) Choice
}

type PrompterFunc func(ctx context.Context, cause error) Choice

func (f PrompterFunc) AskRetry(ctx context.Context, cause error) Choice {
	return f(ctx, cause)
}

var (
	ErrBusy             = errors.New("conversion in progress")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Outcome is what one run of OnInputChanged produced.
type Outcome struct {
	Request   entity.ConversionRequest
	Text      string
	Converted float64
	Attempts  int
	Cancelled bool
	Err       error
}

type Session struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	usecase    usecase.ConversionUsecase
	prompter   Prompter
	maxRetries int
	metrics    *metrics.ConversionMetrics
	logger     *logrus.Logger

	amount float64
	source string
	target string
	result string
	state  State

	updates chan Outcome
	wg      sync.WaitGroup
}

// New starts with amount 0 and both selectors on the first catalog entry.
// maxRetries caps consecutive Retry answers; 0 leaves it unbounded.
func New(
	cat *catalog.Catalog,
	uc usecase.ConversionUsecase,
	prompter Prompter,
	maxRetries int,
	m *metrics.ConversionMetrics,
	logger *logrus.Logger,
) *Session {
	first := cat.Default().Code
	return &Session{
		catalog:    cat,
		usecase:    uc,
		prompter:   prompter,
		maxRetries: maxRetries,
		metrics:    m,
		logger:     logger,
		source:     first,
		target:     first,
		updates:    make(chan Outcome, 1),
	}
}

// SourceOptions and TargetOptions list the same labels in catalog order.
func (s *Session) SourceOptions() []string { return s.catalog.Options() }
func (s *Session) TargetOptions() []string { return s.catalog.Options() }

func (s *Session) Amount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Session) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *Session) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers the outcome of every conversion started by a setter, in
// order. The session is Idle again by the time an outcome is received, and
// setters return ErrBusy until it has been.
func (s *Session) Updates() <-chan Outcome {
	return s.updates
}

// Wait blocks until the in-flight conversion, if any, has queued its outcome
// on Updates.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) SetAmount(ctx context.Context, amount float64) error {
	if err := (entity.ConversionRequest{Amount: amount}).Validate(); err != nil {
		return err
	}
	return s.change(ctx, func() { s.amount = amount })
}

// SetSource and SetTarget take a code or a selector label.
func (s *Session) SetSource(ctx context.Context, option string) error {
	code, err := s.catalog.CodeFromOption(option)
	if err != nil {
		return err
	}
	return s.change(ctx, func() { s.source = code })
}

func (s *Session) SetTarget(ctx context.Context, option string) error {
	code, err := s.catalog.CodeFromOption(option)
	if err != nil {
		return err
	}
	return s.change(ctx, func() { s.target = code })
}

// Preset fills all three inputs without starting a conversion, the way
// controls are populated before their change events are connected.
func (s *Session) Preset(source, target string, amount float64) error {
	if err := (entity.ConversionRequest{Amount: amount}).Validate(); err != nil {
		return err
	}
	src, err := s.catalog.CodeFromOption(source)
	if err != nil {
		return err
	}
	dst, err := s.catalog.CodeFromOption(target)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return ErrBusy
	}
	s.source, s.target, s.amount = src, dst, amount
	return nil
}

// change applies mutate and starts a conversion in the background. Input is
// refused while a previous conversion is running or its outcome is unread.
func (s *Session) change(ctx context.Context, mutate func()) error {
	s.mu.Lock()
	if s.state != Idle || len(s.updates) > 0 {
		s.mu.Unlock()
		return ErrBusy
	}
	mutate()
	s.state = AwaitingConversion
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		out := s.run(ctx)

		// Only this goroutine sends, and change saw an empty buffer, so the
		// send never blocks while mu is held.
		s.mu.Lock()
		s.state = Idle
		s.updates <- out
		s.mu.Unlock()
	}()
	return nil
}

// OnInputChanged converts the current inputs synchronously. It returns nil
// on success and when the user cancels the retry dialog.
func (s *Session) OnInputChanged(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = AwaitingConversion
	s.mu.Unlock()

	defer s.setState(Idle)
	return s.run(ctx).Err
}

func (s *Session) run(ctx context.Context) Outcome {
	s.mu.Lock()
	req := entity.ConversionRequest{SourceCode: s.source, TargetCode: s.target, Amount: s.amount}
	s.mu.Unlock()

	out := Outcome{Request: req}
	for {
		out.Attempts++

		res, err := s.usecase.Convert(ctx, req)
		if err == nil {
			s.mu.Lock()
			s.result = res.Text
			s.mu.Unlock()

			out.Text = res.Text
			out.Converted = res.Converted
			return out
		}

		out.Text = s.Result()
		if !errors.Is(err, service.ErrRatesUnavailable) {
			out.Err = err
			return out
		}

		if s.maxRetries > 0 && out.Attempts > s.maxRetries {
			s.logger.Warnf("Giving up on %s->%s after %d attempts", req.SourceCode, req.TargetCode, out.Attempts)
			out.Err = fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, out.Attempts, err)
			return out
		}

		choice := s.prompter.AskRetry(ctx, err)
		s.metrics.ObserveChoice(choice.String())
		s.logger.Debugf("Rates unavailable dialog answered: %s", choice)

		if choice != Retry {
			out.Cancelled = true
			return out
		}
		if ctx.Err() != nil {
			out.Err = ctx.Err()
			return out
		}
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
