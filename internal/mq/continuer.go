package mq

import (
	"context"

	"github.com/shaiso/Cascade/internal/engine"
)

// StepContinuer — engine.Continuer поверх RabbitMQ: после шага State
// публикуется обратно в workflow.steps, и следующий шаг выполнит
// любой свободный диспетчер.
type StepContinuer struct {
	pub *Publisher
}

// NewStepContinuer создаёт StepContinuer.
func NewStepContinuer(pub *Publisher) *StepContinuer {
	return &StepContinuer{pub: pub}
}

// Continue реализует engine.Continuer.
func (c *StepContinuer) Continue(ctx context.Context, state *engine.State) error {
	return c.pub.PublishWorkflowStep(ctx, state)
}
