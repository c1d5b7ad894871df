package jury

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jurybox/jurybox/internal/logx"
)

type fakeJudge struct {
	ready      bool
	valid      bool
	confidence float64
	raw        string
	err        error
}

func (f *fakeJudge) Ready() bool { return f.ready }

func (f *fakeJudge) Judge(ctx context.Context, statement string) (bool, float64, string, error) {
	return f.valid, f.confidence, f.raw, f.err
}

func TestServiceDecider_PassesThroughJudgment(t *testing.T) {
	t.Parallel()
	d := NewServiceDecider(&fakeJudge{ready: true, valid: false, confidence: 0.8, raw: "NO"},
		time.Second, logx.Nop())

	got := d.Decide("action", "the player eats the sun", "")
	if got.Valid || got.Confidence != 0.8 || got.Reason != "NO" {
		t.Errorf("Decide = %+v", got)
	}
}

func TestServiceDecider_NotReadyVotesValidLowConfidence(t *testing.T) {
	t.Parallel()
	d := NewServiceDecider(&fakeJudge{ready: false}, time.Second, logx.Nop())

	got := d.Decide("action", "anything", "")
	if !got.Valid || got.Confidence != 0.1 {
		t.Errorf("Decide = %+v, want assume-valid at 0.1", got)
	}
}

func TestServiceDecider_CallFailureVotesValidLowConfidence(t *testing.T) {
	t.Parallel()
	d := NewServiceDecider(&fakeJudge{ready: true, err: fmt.Errorf("connection refused")},
		time.Second, logx.Nop())

	got := d.Decide("action", "anything", "")
	if !got.Valid || got.Confidence != 0.1 {
		t.Errorf("Decide = %+v, want assume-valid at 0.1", got)
	}
}
