package tts

import "testing"

func TestVoiceSettingsValidate(t *testing.T) {
	if err := DefaultVoiceSettings().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*VoiceSettings)
	}{
		{"stability", func(s *VoiceSettings) { s.Stability = 1.5 }},
		{"similarity", func(s *VoiceSettings) { s.SimilarityBoost = -0.1 }},
		{"style", func(s *VoiceSettings) { s.Style = 2 }},
		{"speed low", func(s *VoiceSettings) { s.Speed = 0.5 }},
		{"speed high", func(s *VoiceSettings) { s.Speed = 1.3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultVoiceSettings()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
