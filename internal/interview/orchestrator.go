package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/resolvelab/coach/internal/telemetry"
	"github.com/resolvelab/coach/models"
	"github.com/resolvelab/coach/provider"
	"github.com/resolvelab/coach/session"
)

// Config holds interview pacing parameters.
type Config struct {
	// Rounds is the number of questions asked before the resolution is
	// generated.
	Rounds int
	// Model is the assistant model both personas are created with.
	Model         string
	PollInterval  time.Duration
	QuestionWait  time.Duration
	SynthesisWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.Rounds <= 0 {
		c.Rounds = 9
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.QuestionWait <= 0 {
		c.QuestionWait = 30 * time.Second
	}
	if c.SynthesisWait <= 0 {
		// final documents are much larger than single questions
		c.SynthesisWait = 60 * time.Second
	}
	return c
}

// Orchestrator drives an interview from its seed message through the
// configured number of question rounds to the final resolution document.
type Orchestrator struct {
	cfg      Config
	provider provider.Provider
	store    session.Store
	poller   *Poller
	logger   *log.Logger
}

func NewOrchestrator(cfg Config, p provider.Provider, st session.Store, metrics *telemetry.Metrics, logger *log.Logger) *Orchestrator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		cfg:      cfg,
		provider: p,
		store:    st,
		poller:   &Poller{Provider: p, Interval: cfg.PollInterval, Metrics: metrics, Logger: logger},
		logger:   logger,
	}
}

// StartParams are the client-supplied fields that seed an interview.
type StartParams struct {
	Name               string
	Location           string
	ResolutionType     string
	SpecificResolution string
}

// Turn is the outcome of one client call: either the next question or, once
// the round limit is reached, the finished resolution.
type Turn struct {
	InterviewID  string
	ThreadID     string
	QuestionerID string
	ComposerID   string
	Question     *models.QuestionEnvelope
	Number       int
	Resolution   string
	Done         bool
}

// Start allocates the two session-scoped personas and the remote thread,
// seeds it, and asks the first question.
func (o *Orchestrator) Start(ctx context.Context, p StartParams) (*Turn, error) {
	if p.Name == "" {
		p.Name = "User"
	}

	questionerID, err := o.provider.CreateAssistant(ctx, "Resolution Question Coach", questionerInstructions, o.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("create questioner: %w", err)
	}
	composerID, err := o.provider.CreateAssistant(ctx, "Resolution Composer", composerInstructions, o.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("create composer: %w", err)
	}

	threadID, err := o.provider.CreateThread(ctx)
	if err != nil {
		return nil, err
	}

	seed := seedMessage(p.Name, p.Location, p.ResolutionType, p.SpecificResolution)
	if err := o.provider.AddMessage(ctx, threadID, "user", seed); err != nil {
		return nil, err
	}

	iv := &models.Interview{
		ID:           uuid.NewString(),
		ThreadID:     threadID,
		QuestionerID: questionerID,
		ComposerID:   composerID,
		Messages:     []models.Message{{Role: "user", Text: seed, Round: 0, Kind: models.MessageSeed}},
		CreatedAt:    time.Now(),
	}
	o.logger.Printf("interview %s started for %s on thread %s", iv.ID, p.Name, threadID)

	env, err := o.askQuestion(ctx, iv, firstQuestionInstructions(p.Name, p.ResolutionType, p.SpecificResolution))
	if err != nil {
		return nil, err
	}
	if err := o.store.Save(ctx, iv); err != nil {
		return nil, err
	}
	return o.turn(iv, env), nil
}

// SubmitAnswer appends the client's answer and either asks the next question
// or, when the round limit is reached, generates the resolution.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, threadID, answer string) (*Turn, error) {
	iv, err := o.store.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if iv.Done {
		return nil, ErrInterviewDone
	}

	if err := o.provider.AddMessage(ctx, threadID, "user", answer); err != nil {
		return nil, err
	}
	iv.Messages = append(iv.Messages, models.Message{Role: "user", Text: answer, Round: iv.Round, Kind: models.MessageAnswer})
	// persist the answer before any further backend calls so a failed
	// synthesis can be retried via /generate-resolution with a full transcript
	if err := o.store.Save(ctx, iv); err != nil {
		return nil, err
	}

	if iv.Round >= o.cfg.Rounds {
		doc, err := o.synthesize(ctx, iv)
		if err != nil {
			return nil, err
		}
		iv.Done = true
		if err := o.store.Save(ctx, iv); err != nil {
			return nil, err
		}
		o.logger.Printf("interview %s complete after %d rounds", iv.ID, iv.Round)
		return &Turn{InterviewID: iv.ID, ThreadID: iv.ThreadID, QuestionerID: iv.QuestionerID, ComposerID: iv.ComposerID, Resolution: doc, Done: true}, nil
	}

	env, err := o.askQuestion(ctx, iv, nextQuestionInstructions(iv.Round+1))
	if err != nil {
		return nil, err
	}
	if err := o.store.Save(ctx, iv); err != nil {
		return nil, err
	}
	return o.turn(iv, env), nil
}

// GenerateResolution composes the final document on demand, regardless of how
// many rounds have run.
func (o *Orchestrator) GenerateResolution(ctx context.Context, threadID string) (string, error) {
	iv, err := o.store.Get(ctx, threadID)
	if err != nil {
		return "", err
	}
	doc, err := o.synthesize(ctx, iv)
	if err != nil {
		return "", err
	}
	iv.Done = true
	if err := o.store.Save(ctx, iv); err != nil {
		return "", err
	}
	return doc, nil
}

func (o *Orchestrator) turn(iv *models.Interview, env *models.QuestionEnvelope) *Turn {
	return &Turn{
		InterviewID:  iv.ID,
		ThreadID:     iv.ThreadID,
		QuestionerID: iv.QuestionerID,
		ComposerID:   iv.ComposerID,
		Question:     env,
		Number:       iv.Round,
	}
}

// askQuestion runs the questioner persona, repairs the reply, and appends the
// question to the tagged transcript.
func (o *Orchestrator) askQuestion(ctx context.Context, iv *models.Interview, instructions string) (*models.QuestionEnvelope, error) {
	runID, err := o.provider.CreateRun(ctx, iv.ThreadID, iv.QuestionerID, instructions)
	if err != nil {
		return nil, err
	}
	raw, err := o.poller.AwaitRun(ctx, iv.ThreadID, runID, o.cfg.QuestionWait)
	if err != nil {
		return nil, err
	}

	env := Normalize(raw)
	iv.Round++
	iv.Messages = append(iv.Messages, models.Message{
		Role:  "assistant",
		Text:  questionText(env),
		Round: iv.Round,
		Kind:  models.MessageQuestion,
	})
	return &env, nil
}

// synthesize reconstructs the transcript from the tagged message log, posts it
// as the sole seed of a fresh thread, and runs the composer persona there.
// Pairing by round tags rather than by list position keeps the transcript
// correct even if a turn ever appends an unexpected number of messages.
func (o *Orchestrator) synthesize(ctx context.Context, iv *models.Interview) (string, error) {
	threadID, err := o.provider.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	if err := o.provider.AddMessage(ctx, threadID, "user", transcript(iv)); err != nil {
		return "", err
	}
	runID, err := o.provider.CreateRun(ctx, threadID, iv.ComposerID, synthesisInstructions)
	if err != nil {
		return "", err
	}
	doc, err := o.poller.AwaitRun(ctx, threadID, runID, o.cfg.SynthesisWait)
	if err != nil {
		return "", err
	}
	return UnescapeEmphasis(doc), nil
}

// transcript renders the order-preserving record of every question asked and
// every answer given, preceded by the participant's seed message.
func transcript(iv *models.Interview) string {
	var b strings.Builder
	b.WriteString("Interview transcript.\n\n")
	for _, m := range iv.Messages {
		switch m.Kind {
		case models.MessageSeed:
			fmt.Fprintf(&b, "Participant: %s\n", m.Text)
		case models.MessageQuestion:
			fmt.Fprintf(&b, "Q%d: %s\n", m.Round, m.Text)
		case models.MessageAnswer:
			fmt.Fprintf(&b, "A%d: %s\n", m.Round, m.Text)
		}
	}
	return b.String()
}

// questionText flattens an envelope back to plain text for the transcript.
func questionText(env models.QuestionEnvelope) string {
	if env.Type == models.KindChoice && len(env.Options) > 0 {
		return fmt.Sprintf("%s (%s)", env.Text, strings.Join(env.Options, ", "))
	}
	return env.Text
}

// UnescapeEmphasis undoes backslash-escaped emphasis markers the backend is
// known to over-escape. Safe to apply twice: output contains no escaped
// markers to rewrite.
func UnescapeEmphasis(s string) string {
	return strings.ReplaceAll(s, `\*`, "*")
}
