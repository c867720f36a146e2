package nestedsampling

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig(200)
	if err := cfg.Validate(2); err != nil {
		t.Fatalf("DefaultConfig(200).Validate(2) = %v, want nil", err)
	}
}

func TestConfigValidateRejectsTooFewLivePoints(t *testing.T) {
	cfg := DefaultConfig(3)
	if err := cfg.Validate(5); !IsKind(err, KindInvalidConfig) {
		t.Fatalf("Validate() with NLive < D+1 = %v, want KindInvalidConfig", err)
	}
}

func TestConfigValidateRejectsBadTermination(t *testing.T) {
	cfg := DefaultConfig(200)
	cfg.TerminationFactor = 0
	if err := cfg.Validate(2); !IsKind(err, KindInvalidConfig) {
		t.Fatalf("Validate() with TerminationFactor = 0 = %v, want KindInvalidConfig", err)
	}
}

func TestConfigValidatePropagatesReducerError(t *testing.T) {
	cfg := DefaultConfig(200)
	cfg.Reducer.MinNObjects = 0
	if err := cfg.Validate(2); !IsKind(err, KindInvalidConfig) {
		t.Fatalf("Validate() with invalid reducer config = %v, want KindInvalidConfig", err)
	}
}
