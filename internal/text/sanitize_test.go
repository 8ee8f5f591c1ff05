package text

import "testing"

func TestCleanForEmbedding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trims surrounding whitespace",
			in:   "  hello world  ",
			want: "hello world",
		},
		{
			name: "strips control characters but keeps newlines",
			in:   "line one\nline\x00two\x07",
			want: "line one\nlinetwo",
		},
		{
			name: "blanks backslash even before a valid hex escape",
			in:   `value \x41 and é`,
			want: `value  x41 and é`,
		},
		{
			name: "blanks invalid escapes",
			in:   `bad \x and \u12 escape`,
			want: `bad  x and  u12 escape`,
		},
		{
			name: "blanks bare backslash",
			in:   `a \ b`,
			want: `a   b`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanForEmbedding(tt.in)
			if got != tt.want {
				t.Errorf("CleanForEmbedding(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanForEmbedding_InvalidUTF8(t *testing.T) {
	in := "valid" + string([]byte{0xff, 0xfe}) + "text"

	got := CleanForEmbedding(in)
	if got == "" {
		t.Fatal("expected non-empty cleaned text")
	}

	for _, b := range []byte(got) {
		if b >= 0x80 {
			t.Fatalf("expected only ascii bytes in cleaned text, got %q", got)
		}
	}
}
