package commands

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_NonSlashCommand(t *testing.T) {
	tests := []string{
		"hello world",
		"",
		"   ",
		"help",
		"compare these",
		"this is not a command",
	}

	for _, input := range tests {
		result := Parse(input)
		if result != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, result)
		}
	}
}

func TestParse_Help(t *testing.T) {
	tests := []string{
		"/help",
		"/HELP",
		"/?",
		"  /help  ",
		"/help extra args ignored",
	}

	for _, input := range tests {
		result := Parse(input)
		if _, ok := result.(Help); !ok {
			t.Errorf("Parse(%q) = %T, want Help", input, result)
		}
	}
}

func TestParse_NewConversation(t *testing.T) {
	tests := []struct {
		input     string
		wantTitle string
	}{
		{"/new", ""},
		{"/new My Chat", "My Chat"},
		{"/NEW test", "test"},
		{"  /new  trimmed  ", "trimmed"},
		{"/new one two three", "one two three"},
	}

	for _, tt := range tests {
		nc, ok := Parse(tt.input).(NewConversation)
		if !ok {
			t.Errorf("Parse(%q) is not NewConversation", tt.input)
			continue
		}
		if nc.Title != tt.wantTitle {
			t.Errorf("Parse(%q).Title = %q, want %q", tt.input, nc.Title, tt.wantTitle)
		}
	}
}

func TestParse_Models(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/models", []string{}},
		{"/models gpt-4", []string{"gpt-4"}},
		{"/models gpt-4  claude-3-opus", []string{"gpt-4", "claude-3-opus"}},
	}

	for _, tt := range tests {
		m, ok := Parse(tt.input).(Models)
		if !ok {
			t.Errorf("Parse(%q) is not Models", tt.input)
			continue
		}
		if len(m.IDs) != len(tt.want) || (len(tt.want) > 0 && !reflect.DeepEqual(m.IDs, tt.want)) {
			t.Errorf("Parse(%q).IDs = %v, want %v", tt.input, m.IDs, tt.want)
		}
	}
}

func TestParse_Compare(t *testing.T) {
	c, ok := Parse("/compare  Explain   quantum computing ").(Compare)
	if !ok {
		t.Fatal("expected Compare")
	}
	if c.Prompt != "Explain   quantum computing" {
		t.Errorf("Prompt = %q", c.Prompt)
	}

	if _, ok := Parse("/compare").(ParseError); !ok {
		t.Error("/compare without prompt should be a ParseError")
	}
}

func TestParse_Battle(t *testing.T) {
	b, ok := Parse("/battle gpt-4 command-r Write a haiku about Go").(Battle)
	if !ok {
		t.Fatal("expected Battle")
	}
	if b.ModelA != "gpt-4" || b.ModelB != "command-r" {
		t.Errorf("models = %s, %s", b.ModelA, b.ModelB)
	}
	if b.Prompt != "Write a haiku about Go" {
		t.Errorf("Prompt = %q", b.Prompt)
	}
	if b.Text != "gpt-4 command-r Write a haiku about Go" {
		t.Errorf("Text = %q", b.Text)
	}

	b, ok = Parse("/battle Explain  monads").(Battle)
	if !ok {
		t.Fatal("expected Battle")
	}
	if b.ModelA != "" || b.ModelB != "" || b.Text != "Explain  monads" {
		t.Errorf("Battle = %+v", b)
	}

	if _, ok := Parse("/battle").(ParseError); !ok {
		t.Error("/battle without a prompt should be a ParseError")
	}
}

func TestParse_Pick(t *testing.T) {
	p, ok := Parse("/pick gpt-4").(Pick)
	if !ok || p.ModelID != "gpt-4" {
		t.Errorf("Parse(/pick gpt-4) = %+v", p)
	}

	p, ok = Parse("/pick").(Pick)
	if !ok || p.ModelID != "" {
		t.Errorf("/pick without an id should clear, got %+v", p)
	}

	if _, ok := Parse("/pick gpt-4 command-r").(ParseError); !ok {
		t.Error("/pick with two ids should be a ParseError")
	}
}

func TestParse_RankingsReset(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"/rankings", Rankings{}},
		{"/rankings reset", Rankings{Reset: true}},
		{"/leaderboard RESET", Rankings{Reset: true}},
	}
	for _, tt := range tests {
		if got := Parse(tt.input); got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}

	if _, ok := Parse("/rankings wipe").(ParseError); !ok {
		t.Error("/rankings with an unknown option should be a ParseError")
	}
}

func TestParse_Vote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/vote a", "a"},
		{"/vote B", "b"},
		{"/vote draw", "draw"},
	}
	for _, tt := range tests {
		v, ok := Parse(tt.input).(Vote)
		if !ok {
			t.Errorf("Parse(%q) is not Vote", tt.input)
			continue
		}
		if v.Side != tt.want {
			t.Errorf("Parse(%q).Side = %q, want %q", tt.input, v.Side, tt.want)
		}
	}

	for _, input := range []string{"/vote", "/vote c"} {
		if _, ok := Parse(input).(ParseError); !ok {
			t.Errorf("Parse(%q) should be a ParseError", input)
		}
	}
}

func TestParse_Export(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/export", ""},
		{"/export JSON", "json"},
		{"/export text", "text"},
	}
	for _, tt := range tests {
		e, ok := Parse(tt.input).(Export)
		if !ok {
			t.Errorf("Parse(%q) is not Export", tt.input)
			continue
		}
		if e.Format != tt.want {
			t.Errorf("Parse(%q).Format = %q, want %q", tt.input, e.Format, tt.want)
		}
	}
}

func TestParse_Feedback(t *testing.T) {
	f, ok := Parse("/feedback Bug  the vote button   sticks").(Feedback)
	if !ok {
		t.Fatal("expected Feedback")
	}
	if f.Kind != "bug" || f.Text != "the vote button   sticks" {
		t.Errorf("Feedback = %+v", f)
	}

	if _, ok := Parse("/feedback bug").(ParseError); !ok {
		t.Error("/feedback without text should be a ParseError")
	}
}

func TestParse_Attach(t *testing.T) {
	a, ok := Parse("/attach  docs/my notes.txt").(Attach)
	if !ok {
		t.Fatal("expected Attach")
	}
	if a.Path != "docs/my notes.txt" {
		t.Errorf("Path = %q", a.Path)
	}

	a, ok = Parse("/attach").(Attach)
	if !ok || a.Path != "" {
		t.Errorf("/attach without a path should clear, got %+v", a)
	}
}

func TestParse_SimpleCommands(t *testing.T) {
	tests := []struct {
		input    string
		wantType string
	}{
		{"/rankings", "rankings"},
		{"/leaderboard", "rankings"},
		{"/history", "history"},
		{"/quit", "quit"},
		{"/exit", "quit"},
	}

	for _, tt := range tests {
		result := Parse(tt.input)
		if result == nil {
			t.Errorf("Parse(%q) = nil", tt.input)
			continue
		}
		if result.Type() != tt.wantType {
			t.Errorf("Parse(%q).Type() = %q, want %q", tt.input, result.Type(), tt.wantType)
		}
	}
}

func TestParse_UnknownCommand(t *testing.T) {
	tests := []string{
		"/unknown",
		"/foo bar",
		"/context add x",
	}

	for _, input := range tests {
		pe, ok := Parse(input).(ParseError)
		if !ok {
			t.Errorf("Parse(%q) is not ParseError", input)
			continue
		}
		if !strings.Contains(pe.Message, "unknown command") {
			t.Errorf("Parse(%q).Message = %q, want unknown command", input, pe.Message)
		}
	}
}

func TestParse_SlashOnly(t *testing.T) {
	if _, ok := Parse("/").(ParseError); !ok {
		t.Error("Parse(\"/\") should be a ParseError")
	}
}

func TestHelpText(t *testing.T) {
	help := HelpText()

	expectedCommands := []string{
		"/help", "/new", "/models", "/compare", "/battle", "/vote",
		"/rankings", "/history", "/export", "/feedback", "/quit",
		"/pick", "/attach",
	}
	for _, cmd := range expectedCommands {
		if !strings.Contains(help, cmd) {
			t.Errorf("HelpText() missing %q", cmd)
		}
	}
}

func TestCommandTypes(t *testing.T) {
	tests := []struct {
		cmd      Command
		wantType string
	}{
		{Help{}, "help"},
		{NewConversation{}, "new"},
		{Models{}, "models"},
		{Compare{}, "compare"},
		{Battle{}, "battle"},
		{Vote{}, "vote"},
		{Rankings{}, "rankings"},
		{ShowHistory{}, "history"},
		{Export{}, "export"},
		{Feedback{}, "feedback"},
		{Attach{}, "attach"},
		{Pick{}, "pick"},
		{Quit{}, "quit"},
		{ParseError{}, "error"},
	}

	for _, tt := range tests {
		if got := tt.cmd.Type(); got != tt.wantType {
			t.Errorf("%T.Type() = %q, want %q", tt.cmd, got, tt.wantType)
		}
	}
}
