package domain

import "time"

// ActivityEntry is one line of the append-only activity log.
type ActivityEntry struct {
	ID                string         `json:"id"`
	SessionID         string         `json:"session_id,omitempty"`
	Timestamp         time.Time      `json:"timestamp"`
	Action            ActionName     `json:"action"`
	Parameters        Params         `json:"parameters"`
	Status            Status         `json:"status"`
	Details           string         `json:"details"`
	ChainOfThought    string         `json:"chain_of_thought,omitempty"`
	NLUMethod         string         `json:"nlu_method,omitempty"`
	IsMultiStepParent bool           `json:"is_multi_step_parent,omitempty"`
	ResultData        map[string]any `json:"result_data,omitempty"`
}

// EntryRef identifies an appended entry for a later status update.
type EntryRef struct {
	ID string
}

func (r EntryRef) Valid() bool {
	return r.ID != ""
}
