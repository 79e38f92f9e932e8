package stabilize

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/menuhound/menuhound/models"
)

// stepTimeout is the per-step deadline.
const stepTimeout = 10 * time.Second

// ExecuteConsentSteps runs a site's declarative consent interactions in
// order. The step vocabulary is a closed set (click, wait, scroll) on
// purpose: site configuration must never be able to run arbitrary code in
// the page.
func ExecuteConsentSteps(ctx context.Context, sess Session, steps []models.ConsentStep) error {
	for i, step := range steps {
		if err := executeSingleStep(ctx, sess, step); err != nil {
			return models.NewMenuError(
				models.ErrCodeConsentStep,
				fmt.Sprintf("consent step %d (%s) failed after %d completed: %v", i, step.Type, i, err),
				err,
			)
		}
	}
	return nil
}

func executeSingleStep(ctx context.Context, sess Session, step models.ConsentStep) error {
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()

	p := sess.Page().Context(stepCtx)

	switch step.Type {
	case models.ConsentStepClick:
		el, err := p.Element(step.Selector)
		if err != nil {
			return fmt.Errorf("element %q not found: %w", step.Selector, err)
		}
		return el.Click(proto.InputMouseButtonLeft, 1)

	case models.ConsentStepWait:
		if step.Selector != "" {
			return p.WaitElementsMoreThan(step.Selector, 0)
		}
		sleep(stepCtx, time.Duration(step.Milliseconds)*time.Millisecond)
		return stepCtx.Err()

	case models.ConsentStepScroll:
		pixels := step.Pixels
		if pixels <= 0 {
			pixels = sess.ViewportHeight()
		}
		return p.Mouse.Scroll(0, float64(pixels), 1)

	default:
		return fmt.Errorf("unknown consent step type: %s", step.Type)
	}
}
