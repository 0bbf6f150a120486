package validate

import (
	"testing"
)

func TestMessageText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain text", "hello", false},
		{"padded text", "  hello  ", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only newlines", "\n\t\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MessageText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("MessageText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
