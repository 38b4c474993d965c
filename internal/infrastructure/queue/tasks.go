package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

// TaskReconcileOrders reconciles shipments for a set of orders of one account
const TaskReconcileOrders = "marketplace:reconcile_orders"

// ReconcileOrdersPayload is the body of a TaskReconcileOrders task
type ReconcileOrdersPayload struct {
	Account  string   `json:"account"`
	OrderIDs []string `json:"order_ids"`
}

// Validate checks the payload carries an account and at least one order id
func (p ReconcileOrdersPayload) Validate() error {
	if strings.TrimSpace(p.Account) == "" {
		return fmt.Errorf("%w: account is required", ErrInvalidPayload)
	}
	for _, id := range p.OrderIDs {
		if strings.TrimSpace(id) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: at least one order id is required", ErrInvalidPayload)
}

// NewReconcileOrdersTask creates a reconcile task
func NewReconcileOrdersTask(payload ReconcileOrdersPayload, opts ...asynq.Option) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileOrders, body, opts...), nil
}

// ParseReconcileOrdersPayload decodes and validates a task body
func ParseReconcileOrdersPayload(task *asynq.Task) (ReconcileOrdersPayload, error) {
	var payload ReconcileOrdersPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := payload.Validate(); err != nil {
		return payload, err
	}
	return payload, nil
}
