package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// encodeVector stores v as little-endian float32s. An empty vector is stored as NULL.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes, not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

func encodeExpertise(e models.Expertise) (interface{}, error) {
	if e.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal expertise: %w", err)
	}
	return string(b), nil
}

func decodeExpertise(s *string) (models.Expertise, error) {
	if s == nil || *s == "" {
		return models.EmptyExpertise(), nil
	}
	var e models.Expertise
	if err := json.Unmarshal([]byte(*s), &e); err != nil {
		return models.EmptyExpertise(), fmt.Errorf("unmarshal expertise: %w", err)
	}
	return e, nil
}

func encodePayload(p map[string]interface{}) (string, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(b), nil
}

func decodePayload(s string) (map[string]interface{}, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var p map[string]interface{}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}
