package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSLACheck = "applications.sla.check"

const TaskAutomationEvent = "applications.automation"

// SLACheckPayload identifies one idle application to evaluate.
type SLACheckPayload struct {
	ApplicationID string `json:"applicationId"`
}

// AutomationEventPayload carries a deferred automation event for one
// application.
type AutomationEventPayload struct {
	ApplicationID string            `json:"applicationId"`
	Event         string            `json:"event"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func NewSLACheckTask(payload SLACheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSLACheck, data), nil
}

func ParseSLACheckPayload(task *asynq.Task) (SLACheckPayload, error) {
	var payload SLACheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SLACheckPayload{}, err
	}
	return payload, nil
}

func NewAutomationEventTask(payload AutomationEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAutomationEvent, data), nil
}

func ParseAutomationEventPayload(task *asynq.Task) (AutomationEventPayload, error) {
	var payload AutomationEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AutomationEventPayload{}, err
	}
	return payload, nil
}
