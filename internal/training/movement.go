package training

import (
	"bytes"
	"encoding/json"
	"time"
)

type Movement struct {
	ID                     int64     `json:"id"`
	Author                 *int64    `json:"author"`
	Name                   string    `json:"name"`
	Category               string    `json:"category"`
	Notes                  string    `json:"notes"`
	CreatedTimestamp       time.Time `json:"created_timestamp"`
	UpdatedTimestamp       time.Time `json:"updated_timestamp"`
	RecommendedWarmupSets  string    `json:"recommended_warmup_sets"`
	RecommendedWorkingSets string    `json:"recommended_working_sets"`
	RecommendedRepRange    string    `json:"recommended_rep_range"`
	RecommendedRPE         string    `json:"recommended_rpe"`
	RecommendedRestTime    *int      `json:"recommended_rest_time"`
}

// MovementInput is the writable part of a movement. Nil fields are left unchanged on update.
type MovementInput struct {
	Name                   *string `json:"name"`
	Category               *string `json:"category"`
	Notes                  *string `json:"notes"`
	RecommendedWarmupSets  *string `json:"recommended_warmup_sets"`
	RecommendedWorkingSets *string `json:"recommended_working_sets"`
	RecommendedRepRange    *string `json:"recommended_rep_range"`
	RecommendedRPE         *string `json:"recommended_rpe"`
	RecommendedRestTime    *int    `json:"recommended_rest_time"`
	// ClearRecommendedRestTime is set when the payload carries an explicit null rest time.
	ClearRecommendedRestTime bool `json:"-"`
}

func (in *MovementInput) UnmarshalJSON(data []byte) error {
	type plainInput MovementInput
	var decoded plainInput
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	restTime, ok := fields["recommended_rest_time"]
	decoded.ClearRecommendedRestTime = ok && bytes.Equal(bytes.TrimSpace(restTime), []byte("null"))

	*in = MovementInput(decoded)
	return nil
}

func (in MovementInput) applyTo(m *Movement) {
	setIfPresent(&m.Name, in.Name)
	setIfPresent(&m.Category, in.Category)
	setIfPresent(&m.Notes, in.Notes)
	setIfPresent(&m.RecommendedWarmupSets, in.RecommendedWarmupSets)
	setIfPresent(&m.RecommendedWorkingSets, in.RecommendedWorkingSets)
	setIfPresent(&m.RecommendedRepRange, in.RecommendedRepRange)
	setIfPresent(&m.RecommendedRPE, in.RecommendedRPE)
	switch {
	case in.ClearRecommendedRestTime:
		m.RecommendedRestTime = nil
	case in.RecommendedRestTime != nil:
		restTime := *in.RecommendedRestTime
		m.RecommendedRestTime = &restTime
	}
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
