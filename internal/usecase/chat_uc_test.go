package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-chat-relay/internal/domain"
	"ai-chat-relay/internal/domain/model"
	"ai-chat-relay/internal/domain/ports/adapter"
)

func newChatUC(relay adapter.CompletionAdapter) *chatUC {
	return NewChatUseCase(relay, "stub", time.Second, 10, newLogger())
}

func userTurn(text string) []model.Turn {
	return []model.Turn{{Role: model.RoleUser, Content: text}}
}

func TestChatUC_SendMessage(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("hello", adapter.Usage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	reply, usage, err := uc.SendMessage(ctx, sess, userTurn("hi"))
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply != "hello" {
		t.Errorf("reply = %q", reply)
	}
	if usage.TotalTokens != 3 {
		t.Errorf("usage = %+v", usage)
	}

	// transcript grows by exactly 2 on success: user + assistant
	turns := sess.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript len = %d, want 2", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[0].Content != "hi" {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[1].Role != model.RoleAssistant || turns[1].Content != "hello" {
		t.Errorf("turn 1 = %+v", turns[1])
	}

	// the upstream saw a system directive first, then the transcript
	sent := relay.lastCall()
	if len(sent) != 3 || sent[0].Role != model.RoleSystem {
		t.Fatalf("upstream saw %v", sent)
	}

	// one history record per successful exchange
	if sess.HistoryCount() != 1 {
		t.Errorf("history = %d, want 1", sess.HistoryCount())
	}
}

func TestChatUC_SendMessage_FailureKeepsUserTurn(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("late", adapter.Usage{})
	relay.errs = []error{domain.ErrUpstreamTimeout}
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	_, _, err := uc.SendMessage(ctx, sess, userTurn("hi"))
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}

	// transcript grows by exactly 1 on failure: the user turn stays
	turns := sess.Turns()
	if len(turns) != 1 || turns[0].Role != model.RoleUser {
		t.Fatalf("transcript after failure = %v", turns)
	}
	if sess.HistoryCount() != 0 {
		t.Error("failed exchange must not be recorded")
	}

	// next call succeeds: +2, full context resent including the
	// stranded user turn
	if _, _, err := uc.SendMessage(ctx, sess, userTurn("again")); err != nil {
		t.Fatalf("second SendMessage: %v", err)
	}
	if sess.TurnCount() != 3 {
		t.Errorf("transcript len = %d, want 3", sess.TurnCount())
	}
	sent := relay.lastCall()
	if len(sent) != 4 { // system + hi + again + nothing else
		t.Errorf("upstream saw %d messages, want 4", len(sent))
	}
}

func TestChatUC_SendMessage_AdoptsClientSystemTurn(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("arr", adapter.Usage{TotalTokens: 1})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	incoming := []model.Turn{
		{Role: model.RoleSystem, Content: "You are a pirate."},
		{Role: model.RoleUser, Content: "ahoy"},
	}
	if _, _, err := uc.SendMessage(ctx, sess, incoming); err != nil {
		t.Fatal(err)
	}
	sent := relay.lastCall()
	if sent[0].Content != "You are a pirate." {
		t.Errorf("directive = %q, want the client's", sent[0].Content)
	}
	systems := 0
	for _, m := range sent {
		if m.Role == model.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Errorf("system turns sent = %d, want 1", systems)
	}
}

func TestChatUC_SendMessage_EmptyMessage(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("x", adapter.Usage{})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	for _, in := range [][]model.Turn{nil, {}, userTurn("   ")} {
		if _, _, err := uc.SendMessage(ctx, sess, in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	}
	if relay.callCount() != 0 {
		t.Error("relay called for invalid input")
	}
	if sess.TurnCount() != 0 {
		t.Error("transcript touched by invalid input")
	}
}

func TestChatUC_RoleChat_DoesNotTouchTranscript(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("a verse", adapter.Usage{TotalTokens: 2})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	// interleave plain chat and role chat
	if _, _, err := uc.SendMessage(ctx, sess, userTurn("hi")); err != nil {
		t.Fatal(err)
	}
	before := sess.Turns()

	reply, _, err := uc.RoleChat(ctx, sess, "poet", "write about spring")
	if err != nil {
		t.Fatalf("RoleChat: %v", err)
	}
	if reply != "a verse" {
		t.Errorf("reply = %q", reply)
	}

	after := sess.Turns()
	if len(after) != len(before) {
		t.Fatalf("transcript changed by role chat: %d -> %d", len(before), len(after))
	}

	// role chat sent exactly two turns: directive + user message
	sent := relay.lastCall()
	if len(sent) != 2 || sent[0].Role != model.RoleSystem || sent[1].Content != "write about spring" {
		t.Errorf("upstream saw %v", sent)
	}

	// but it is recorded in history, tagged with the persona
	records, total := uc.History(ctx, sess)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	last := records[len(records)-1]
	if last.Persona != "poet" || last.AIResponse != "a verse" {
		t.Errorf("record = %+v", last)
	}

	// plain chat afterwards is unaffected by the role exchange
	if _, _, err := uc.SendMessage(ctx, sess, userTurn("back to normal")); err != nil {
		t.Fatal(err)
	}
	for _, m := range relay.lastCall() {
		if m.Content == "write about spring" {
			t.Error("role-chat turn leaked into plain-chat context")
		}
	}
}

func TestChatUC_RoleChat_UnknownRole(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("aye", adapter.Usage{})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	if _, _, err := uc.RoleChat(ctx, sess, "pirate captain", "ahoy"); err != nil {
		t.Fatalf("unknown role must not error: %v", err)
	}
	sent := relay.lastCall()
	if sent[0].Content != "The assistant is a pirate captain." {
		t.Errorf("directive = %q", sent[0].Content)
	}
}

func TestChatUC_HistoryWindowAndClear(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("ok", adapter.Usage{})
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	for i := 0; i < 12; i++ {
		if _, _, err := uc.SendMessage(ctx, sess, userTurn("ping")); err != nil {
			t.Fatal(err)
		}
	}

	records, total := uc.History(ctx, sess)
	if len(records) != 10 {
		t.Errorf("window = %d, want 10", len(records))
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}
	// chronological, newest last
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatal("records out of order")
		}
	}

	uc.ClearHistory(ctx, sess)
	records, total = uc.History(ctx, sess)
	if len(records) != 0 || total != 0 {
		t.Errorf("after clear: %d records, total %d", len(records), total)
	}
	// the session itself survives a history clear
	if sess.Username != "ann" || sess.TurnCount() == 0 {
		t.Error("session state lost on clear")
	}
}

func TestChatUC_UsageFallbackEstimate(t *testing.T) {
	ctx := context.Background()
	relay := newStubRelay("ok", adapter.Usage{}) // upstream omits usage
	uc := newChatUC(relay)
	sess := model.NewSession("tok", "ann")

	_, usage, err := uc.SendMessage(ctx, sess, userTurn("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if usage.TotalTokens == 0 {
		t.Error("expected local token estimate when upstream omits usage")
	}
}
