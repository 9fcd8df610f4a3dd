package prompt

import (
	"strings"
	"testing"

	"github.com/SamFelix03/megha-network-arbitrum/internal/character"
	"github.com/SamFelix03/megha-network-arbitrum/internal/tools"
)

func TestBuildRoleDelimitedLayout(t *testing.T) {
	got := Build("system text", "hello there", nil, "", "")

	want := "<extra_id_0>System\nsystem text\n\n<extra_id_1>User\nhello there\n<extra_id_1>Assistant\n"
	if got != want {
		t.Fatalf("layout mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestBuildHistoryPlacedInsideSystemBlock(t *testing.T) {
	history := "\n\nPrevious conversation:\nUser: hi\nAssistant: hello\n\n"
	got := Build("system text", "next question", nil, "", history)

	systemEnd := strings.Index(got, TurnMarker)
	if systemEnd < 0 {
		t.Fatalf("user marker missing: %q", got)
	}
	if !strings.Contains(got[:systemEnd], "Previous conversation:") {
		t.Fatalf("history must live inside the system block: %q", got)
	}
}

func TestBuildRendersToolBlocks(t *testing.T) {
	specs := tools.Catalogue()
	got := Build(ToolSystemPrompt, "check my wallet", specs, "", "")

	if n := strings.Count(got, "<tool>\n"); n != len(specs) {
		t.Fatalf("expected %d tool blocks, found %d", len(specs), n)
	}
	if !strings.Contains(got, `"name": "getBtcHdWalletBalances"`) {
		t.Fatalf("tool definitions must be serialized into the prompt")
	}
	if strings.Index(got, "<tool>") < strings.Index(got, ToolSystemPrompt[:40]) {
		t.Fatalf("tool blocks must come after the system prompt")
	}
	if strings.Index(got, "</tool>") > strings.Index(got, TurnMarker+"User") {
		t.Fatalf("tool blocks must come before the user turn")
	}
}

func TestBuildToolResponseContext(t *testing.T) {
	got := Build("system", "question", nil, `{"balance":"1"}`, "")
	if !strings.Contains(got, "<context>\n{\"balance\":\"1\"}\n</context>\n\n") {
		t.Fatalf("tool response must be wrapped in a context block: %q", got)
	}
}

func TestPersonaSystemPromptFallback(t *testing.T) {
	if got := PersonaSystemPrompt(nil); got != DefaultSystemPrompt {
		t.Fatalf("nil profile must fall back to the default prompt, got %q", got)
	}
}

func TestPersonaSystemPromptInterpolatesProfile(t *testing.T) {
	profile := &character.Profile{
		Name:           "Megha",
		Description:    "a cheerful wallet guide",
		Personality:    "curious and upbeat",
		Scenario:       "helping users explore their wallets",
		MessageExample: "Let's take a look at your wallet!",
	}

	got := PersonaSystemPrompt(profile)
	for _, fragment := range []string{
		"You are Megha. a cheerful wallet guide",
		"Personality: curious and upbeat",
		"Scenario: helping users explore their wallets",
		"Example message: Let's take a look at your wallet!",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("persona prompt missing %q:\n%s", fragment, got)
		}
	}
}

func TestFollowUpEmbedsCallAndResult(t *testing.T) {
	got := FollowUp("what is my balance", `{"name":"getNativeBalance"}`, `{"balance":"1"}`)

	if !strings.Contains(got, `User asked: "what is my balance"`) {
		t.Fatalf("follow-up must quote the user message: %q", got)
	}
	if !strings.Contains(got, `Tool call was made: {"name":"getNativeBalance"}`) {
		t.Fatalf("follow-up must include the raw tool call: %q", got)
	}
	if !strings.Contains(got, `Tool response: {"balance":"1"}`) {
		t.Fatalf("follow-up must include the tool result: %q", got)
	}
	if !strings.Contains(got, "simple one-liner") {
		t.Fatalf("follow-up instruction missing: %q", got)
	}
}

func TestStopSequences(t *testing.T) {
	stops := StopSequences()
	if len(stops) != 2 || stops[0] != SystemMarker || stops[1] != TurnMarker {
		t.Fatalf("unexpected stop sequences: %v", stops)
	}
}
