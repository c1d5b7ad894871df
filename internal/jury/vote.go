// Package jury implements the consensus engine: each node obtains a local
// judgment, broadcasts it as a vote, and tallies peer votes into a single
// resolved verdict shared by all replicas.
package jury

import (
	"encoding/json"
	"fmt"
)

// Vote is one juror's judgment about a request. Immutable value type; the
// same shape is broadcast to peers and received from them.
type Vote struct {
	RequestID  int     `json:"requestId"`
	Valid      bool    `json:"isValid"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	JurorID    string  `json:"juryId"`
	Context    string  `json:"context"`
}

// EncodeVote serializes a Vote for the peer channel.
func EncodeVote(v *Vote) ([]byte, error) {
	if v.JurorID == "" {
		return nil, fmt.Errorf("vote: juror id is required")
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return nil, fmt.Errorf("vote: confidence %v out of [0,1]", v.Confidence)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding vote: %w", err)
	}
	return b, nil
}

// DecodeVote parses a Vote received from the peer channel.
func DecodeVote(data []byte) (*Vote, error) {
	var v Vote
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding vote: %w", err)
	}
	if v.JurorID == "" {
		return nil, fmt.Errorf("vote: juror id is required")
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return nil, fmt.Errorf("vote: confidence %v out of [0,1]", v.Confidence)
	}
	return &v, nil
}

// Verdict is the consensus outcome for one request.
type Verdict struct {
	RequestID     int     `json:"requestId"`
	MajorityValid bool    `json:"majorityValid"`
	AvgConfidence float64 `json:"avgConfidence"`
	ValidVotes    int     `json:"validVotes"`
	InvalidVotes  int     `json:"invalidVotes"`
	TotalVotes    int     `json:"totalVotes"`
}

// Decision is a single node's local judgment, before it becomes a Vote.
type Decision struct {
	Valid      bool
	Confidence float64
	Reason     string
}
