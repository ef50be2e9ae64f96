package security

import (
	"testing"
)

func TestSanitizeAuthorInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Plain text untouched",
			input: "What is 2+2?",
			want:  "What is 2+2?",
		},
		{
			name:  "Whitespace trimmed",
			input: "  Sky color?  ",
			want:  "Sky color?",
		},
		{
			name:  "HTML stripped",
			input: "<b>Bold</b> question <script>alert(1)</script>",
			want:  "Bold question",
		},
		{
			name:  "Null bytes removed",
			input: "abc\x00def",
			want:  "abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeAuthorInput(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeAuthorInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateWorkbookName(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"questions.xlsx", true},
		{"QUESTIONS.XLSX", true},
		{"macro.xlsm", true},
		{"questions.csv", false},
		{"questions.xlsx.exe", false},
	}

	for _, tt := range tests {
		if got := ValidateWorkbookName(tt.filename); got != tt.want {
			t.Errorf("ValidateWorkbookName(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if !ValidateFileSize(100, 1000) {
		t.Error("ValidateFileSize(100, 1000) = false, want true")
	}
	if ValidateFileSize(0, 1000) {
		t.Error("ValidateFileSize(0, 1000) = true, want false")
	}
	if ValidateFileSize(2000, 1000) {
		t.Error("ValidateFileSize(2000, 1000) = true, want false")
	}
}
