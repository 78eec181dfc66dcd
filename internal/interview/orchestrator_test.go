package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/resolvelab/coach/models"
	"github.com/resolvelab/coach/provider"
	"github.com/resolvelab/coach/session"
	"github.com/resolvelab/coach/session/inmemory"
)

// scriptedProvider completes every run immediately, answering with the next
// scripted reply. Threads hold messages newest-first, like the real backend.
type scriptedProvider struct {
	mu            sync.Mutex
	replies       []string
	threads       map[string][]provider.ThreadMessage
	threadOrder   []string
	runAssistants []string
	nextID        int
}

func newScriptedProvider(replies ...string) *scriptedProvider {
	return &scriptedProvider{replies: replies, threads: make(map[string][]provider.ThreadMessage)}
}

func (f *scriptedProvider) CreateAssistant(_ context.Context, name, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("asst_%d_%s", f.nextID, strings.Fields(name)[0]), nil
}

func (f *scriptedProvider) CreateThread(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("thread_%d", f.nextID)
	f.threads[id] = nil
	f.threadOrder = append(f.threadOrder, id)
	return id, nil
}

func (f *scriptedProvider) AddMessage(_ context.Context, threadID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[threadID] = append([]provider.ThreadMessage{{Role: role, Content: content}}, f.threads[threadID]...)
	return nil
}

func (f *scriptedProvider) ListMessages(_ context.Context, threadID string) ([]provider.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.ThreadMessage(nil), f.threads[threadID]...), nil
}

func (f *scriptedProvider) CreateRun(_ context.Context, threadID, assistantID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return "", errors.New("scripted provider: no replies left")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	f.threads[threadID] = append([]provider.ThreadMessage{{Role: "assistant", Content: reply}}, f.threads[threadID]...)
	f.runAssistants = append(f.runAssistants, assistantID)
	f.nextID++
	return fmt.Sprintf("run_%d", f.nextID), nil
}

func (f *scriptedProvider) GetRun(_ context.Context, _, runID string) (provider.Run, error) {
	return provider.Run{ID: runID, Status: provider.StatusCompleted}, nil
}

func (f *scriptedProvider) SubmitToolOutputs(context.Context, string, string, []provider.ToolOutput) error {
	return nil
}

func testOrchestrator(p provider.Provider, rounds int) (*Orchestrator, session.Store) {
	st := inmemory.New(time.Minute)
	o := NewOrchestrator(Config{
		Rounds:        rounds,
		PollInterval:  time.Millisecond,
		QuestionWait:  time.Second,
		SynthesisWait: time.Second,
	}, p, st, nil, nil)
	return o, st
}

func TestInterviewFullFlow(t *testing.T) {
	fake := newScriptedProvider(
		`{"type": "YES/NO", "text": "Have you run a race before?"}`,
		`{"type": "CHOICE", "text": "When can you train?", "options": ["Mornings", "Evenings", "Other"]}`,
		`{"type": "TEXT", "text": "What could get in your way?"}`,
		`# Ana's 5k Plan`,
	)
	o, _ := testOrchestrator(fake, 3)
	ctx := context.Background()

	turn, err := o.Start(ctx, StartParams{Name: "Ana", Location: "Seattle", ResolutionType: "fitness", SpecificResolution: "run a 5k"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if turn.Number != 1 {
		t.Fatalf("expected question number 1, got %d", turn.Number)
	}
	if turn.Question == nil || turn.Question.Type != models.KindYesNo {
		t.Fatalf("unexpected first question: %+v", turn.Question)
	}
	if turn.ThreadID == "" || turn.QuestionerID == "" || turn.ComposerID == "" {
		t.Fatalf("missing session handles: %+v", turn)
	}
	if turn.InterviewID == "" {
		t.Fatalf("missing interview id: %+v", turn)
	}
	interviewID := turn.InterviewID

	answers := []string{"yes, once", "mornings work best", "travel for work"}
	for i, answer := range answers[:2] {
		turn, err = o.SubmitAnswer(ctx, turn.ThreadID, answer)
		if err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i+1, err)
		}
		if turn.Done {
			t.Fatalf("interview finished early at answer %d", i+1)
		}
		if turn.Number != i+2 {
			t.Fatalf("expected question number %d, got %d", i+2, turn.Number)
		}
	}

	turn, err = o.SubmitAnswer(ctx, turn.ThreadID, answers[2])
	if err != nil {
		t.Fatalf("final SubmitAnswer: %v", err)
	}
	if !turn.Done {
		t.Fatalf("expected resolution, got question %+v", turn.Question)
	}
	if turn.Resolution != "# Ana's 5k Plan" {
		t.Fatalf("unexpected resolution: %q", turn.Resolution)
	}
	if turn.InterviewID != interviewID {
		t.Fatalf("interview id changed mid-session: %q != %q", turn.InterviewID, interviewID)
	}

	// the composer worked from a fresh thread seeded with the full transcript
	synthThread := fake.threadOrder[len(fake.threadOrder)-1]
	msgs := fake.threads[synthThread]
	if len(msgs) != 2 { // transcript seed + scripted document
		t.Fatalf("expected 2 messages on synthesis thread, got %d", len(msgs))
	}
	seed := msgs[1].Content
	if !strings.Contains(seed, "Hi, I'm Ana from Seattle") {
		t.Fatalf("transcript missing seed message:\n%s", seed)
	}
	for i, answer := range answers {
		if !strings.Contains(seed, fmt.Sprintf("A%d: %s", i+1, answer)) {
			t.Fatalf("transcript missing answer %d:\n%s", i+1, seed)
		}
	}
	if strings.Index(seed, "A1:") > strings.Index(seed, "A2:") || strings.Index(seed, "A2:") > strings.Index(seed, "A3:") {
		t.Fatalf("answers out of order:\n%s", seed)
	}
	if !strings.Contains(seed, "Q2: When can you train? (Mornings, Evenings, Other)") {
		t.Fatalf("choice question not flattened into transcript:\n%s", seed)
	}

	// questions ran under the questioner persona, the document under the composer
	if fake.runAssistants[0] != turn.QuestionerID {
		t.Fatalf("first run used %s, want questioner %s", fake.runAssistants[0], turn.QuestionerID)
	}
	if last := fake.runAssistants[len(fake.runAssistants)-1]; last != turn.ComposerID {
		t.Fatalf("synthesis run used %s, want composer %s", last, turn.ComposerID)
	}
}

func TestSubmitAnswerAfterDone(t *testing.T) {
	fake := newScriptedProvider(
		`{"type": "TEXT", "text": "What is your goal?"}`,
		"the plan",
	)
	o, _ := testOrchestrator(fake, 1)
	ctx := context.Background()

	turn, err := o.Start(ctx, StartParams{Name: "Sam", SpecificResolution: "read more"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	turn, err = o.SubmitAnswer(ctx, turn.ThreadID, "finish ten books")
	if err != nil || !turn.Done {
		t.Fatalf("expected done turn, got %+v, %v", turn, err)
	}
	if _, err := o.SubmitAnswer(ctx, turn.ThreadID, "another answer"); !errors.Is(err, ErrInterviewDone) {
		t.Fatalf("expected ErrInterviewDone, got %v", err)
	}
}

func TestSubmitAnswerUnknownThread(t *testing.T) {
	o, _ := testOrchestrator(newScriptedProvider(), 3)
	if _, err := o.SubmitAnswer(context.Background(), "thread_missing", "hello"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session.ErrNotFound, got %v", err)
	}
}

func TestGenerateResolutionUnescapesEmphasis(t *testing.T) {
	fake := newScriptedProvider(
		`{"type": "TEXT", "text": "What is your goal?"}`,
		`Make it \*count\* this year`,
	)
	o, _ := testOrchestrator(fake, 9)
	ctx := context.Background()

	turn, err := o.Start(ctx, StartParams{Name: "Ana", SpecificResolution: "run a 5k"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	doc, err := o.GenerateResolution(ctx, turn.ThreadID)
	if err != nil {
		t.Fatalf("GenerateResolution: %v", err)
	}
	if doc != "Make it *count* this year" {
		t.Fatalf("unexpected document: %q", doc)
	}
	// no double-unescape when nothing is escaped
	if UnescapeEmphasis(doc) != doc {
		t.Fatalf("unescape is not idempotent on %q", doc)
	}
}
