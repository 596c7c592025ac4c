package money

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustParse(t *testing.T, s string) Fraction {
	t.Helper()
	f, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return f
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "5", want: "5"},
		{input: "0", want: "0"},
		{input: "1/2", want: "1/2"},
		{input: "1 1/2", want: "1 1/2"},
		{input: "-1 1/2", want: "-1 1/2"},
		{input: "-3/4", want: "-3/4"},
		{input: "2/4", want: "1/2"},
		{input: "7/2", want: "3 1/2"},
		{input: "-7", want: "-7"},
		{input: "123456789012345678901234567891/7", want: "17636684144620811271604938270 1/7"},
		{input: "1/0", wantErr: true},
		{input: "1 1/0", wantErr: true},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "1.5", wantErr: true},
		{input: "1 / 2", wantErr: true},
		{input: "1  1/2", wantErr: true},
		{input: "1 -1/2", wantErr: true},
		{input: "--1", wantErr: true},
		{input: "1/2/3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.input, f)
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("Parse(%q) error = %v, want *ParseError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	// Parse(String(x)) == x for everything the system can produce.
	values := []Fraction{
		Zero(),
		FromInt(7),
		FromInt(-7),
		FromCents(1),
		FromCents(-1),
		FromCents(550),
		FromCents(100).Add(mustParse(t, "1/3")),
		mustParse(t, "-1 1/2"),
		mustParse(t, "1/3").Sub(FromInt(2)),
	}

	for _, v := range values {
		s := v.String()
		back, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if !back.Equal(v) {
			t.Errorf("round trip of %q: got %v", s, back)
		}
	}
}

func TestMixedNumberSign(t *testing.T) {
	// The sign applies to the whole value: -1 1/2 is -3/2, not -1/2.
	f := mustParse(t, "-1 1/2")
	if want := mustParse(t, "-3/2"); !f.Equal(want) {
		t.Errorf("-1 1/2 parsed as %v, want -3/2", f)
	}
}

func TestExactDivision(t *testing.T) {
	// One krone split three ways and reassembled must be exactly one
	// krone. This is the property floating point cannot give us.
	third, err := FromCents(100).Div(FromInt(3))
	if err != nil {
		t.Fatalf("Div failed: %v", err)
	}

	sum := third.Add(third).Add(third)
	if !sum.Equal(FromCents(100)) {
		t.Errorf("1/3 + 1/3 + 1/3 of 100 cents = %v, want 1", sum)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := FromCents(100).Div(Zero())
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div by zero error = %v, want ErrDivisionByZero", err)
	}
}

func TestOrdering(t *testing.T) {
	a := mustParse(t, "1/2")
	b := mustParse(t, "2/3")
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Errorf("Cmp ordering is wrong: a=%v b=%v", a, b)
	}
	neg := mustParse(t, "-1 1/2")
	if neg.Cmp(a) != -1 {
		t.Errorf("Cmp(%v, %v) = %d, want -1", neg, a, neg.Cmp(a))
	}
}

func TestJSONEncoding(t *testing.T) {
	debits := map[string]Fraction{
		"acct-a": FromCents(550),
		"acct-b": FromCents(250),
	}

	data, err := json.Marshal(debits)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"acct-a":"5 1/2","acct-b":"2 1/2"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back map[string]Fraction
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for account, v := range debits {
		if !back[account].Equal(v) {
			t.Errorf("round trip for %s: got %v, want %v", account, back[account], v)
		}
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "55", want: 5500},
		{input: "55.5", want: 5550},
		{input: "55.50", want: 5550},
		{input: "0.01", want: 1},
		{input: "-2.50", want: -250},
		{input: "0", want: 0},
		{input: "1.005", wantErr: true},
		{input: "1.2345", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "1/2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
