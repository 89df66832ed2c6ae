package csvline

import (
	"reflect"
	"testing"
)

func TestParse_Plain(t *testing.T) {
	got := Parse("a,b,c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_QuotedDelimiter(t *testing.T) {
	got := Parse(`North,"Smith, John",42`)
	want := []string{"North", "Smith, John", "42"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_EmptyFields(t *testing.T) {
	got := Parse("a,,c,")
	want := []string{"a", "", "c", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_EmptyLine(t *testing.T) {
	got := Parse("")
	if len(got) != 1 || got[0] != "" {
		t.Errorf("Parse(\"\"): got %q, want one empty field", got)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	// Malformed quoting must not fail; the raw text is kept.
	got := Parse(`a,"bc`)
	want := []string{"a", `"bc`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_QuotedAtLineEnd(t *testing.T) {
	got := Parse(`a,"b,c"`)
	want := []string{"a", "b,c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_StrayTextAfterQuote(t *testing.T) {
	// Characters between a closing quote and the delimiter are dropped.
	got := Parse(`"b,c"x,d`)
	want := []string{"b,c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}

func TestParse_QuotedEmpty(t *testing.T) {
	got := Parse(`"",x`)
	want := []string{"", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse: got %q, want %q", got, want)
	}
}
