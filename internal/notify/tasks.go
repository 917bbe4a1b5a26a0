// Package notify delivers owner notifications for newly assigned leads.
// The API process enqueues tasks on the event bus edge; the worker process
// consumes them and sends email.
package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadOwnerNotify = "leads.owner.notify"

// LeadOwnerNotifyPayload carries everything the email needs, so the worker
// never has to read the lead back from the database.
type LeadOwnerNotifyPayload struct {
	LeadID       string `json:"leadId"`
	LeadName     string `json:"leadName"`
	OwnerEmail   string `json:"ownerEmail"`
	Channel      string `json:"channel"`
	EventName    string `json:"eventName"`
	CategoryName string `json:"categoryName,omitempty"`
}

func NewLeadOwnerNotifyTask(payload LeadOwnerNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadOwnerNotify, data), nil
}

func ParseLeadOwnerNotifyPayload(task *asynq.Task) (LeadOwnerNotifyPayload, error) {
	var payload LeadOwnerNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadOwnerNotifyPayload{}, err
	}
	return payload, nil
}
