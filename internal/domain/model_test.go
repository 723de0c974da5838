package domain

import "testing"

func TestTrainingStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status TrainingStatus
		want   bool
	}{
		{TrainingStatusSucceeded, true},
		{TrainingStatusFailed, true},
		{TrainingStatusCanceled, true},
		{TrainingStatusStarting, false},
		{TrainingStatusProcessing, false},
		{TrainingStatus("queued"), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseOutputVersion(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want *string
	}{
		{name: "owner/model:version", ref: "acme/m1:abc", want: strPtr("abc")},
		{name: "version with slashes", ref: "acme/m1:v1.2", want: strPtr("v1.2")},
		{name: "no version segment", ref: "acme/m1", want: nil},
		{name: "empty version", ref: "acme/m1:", want: nil},
		{name: "empty string", ref: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOutputVersion(tt.ref)
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("ParseOutputVersion(%q) = nil, want %q", tt.ref, *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("ParseOutputVersion(%q) = %q, want nil", tt.ref, *got)
			case got != nil && tt.want != nil && *got != *tt.want:
				t.Errorf("ParseOutputVersion(%q) = %q, want %q", tt.ref, *got, *tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
