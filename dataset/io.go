package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeu5/rl-dataset/util"
)

const fileVersion = 1

// datasetFile is the persisted container: the flat step arrays plus
// the schema. JSON keeps float32 values bit-exact through the shortest
// round-trip representation; the arrays must be finite.
type datasetFile struct {
	Version          int         `json:"version"`
	DiscreteAction   bool        `json:"discrete_action"`
	ObservationShape []int       `json:"observation_shape"`
	ActionSize       int         `json:"action_size"`
	Observations     [][]float32 `json:"observations"`
	Actions          [][]float32 `json:"actions"`
	Rewards          []float32   `json:"rewards"`
	Terminals        []float32   `json:"terminals"`
}

// Dump writes the dataset to path as a single JSON container, creating
// parent directories as needed.
func (d *Dataset) Dump(path string) error {
	file := &datasetFile{
		Version:          fileVersion,
		DiscreteAction:   d.schema.Discrete,
		ObservationShape: d.schema.ObservationShape,
		ActionSize:       d.schema.ActionSize,
		Observations:     d.Observations(),
		Actions:          d.Actions(),
		Rewards:          d.Rewards(),
		Terminals:        d.Terminals(),
	}
	return util.SaveJson(path, file)
}

// LoadDataset reads a container written by Dump and reconstructs the
// dataset with the identical episode partition. Malformed content
// surfaces as ErrCorruptDataset and never yields a partially populated
// dataset; file open errors pass through untouched.
func LoadDataset(path string) (*Dataset, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := &datasetFile{}
	if err := json.Unmarshal(bs, file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDataset, err)
	}
	if file.Version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptDataset, file.Version)
	}
	if file.Observations == nil || file.Actions == nil || file.Rewards == nil || file.Terminals == nil {
		return nil, fmt.Errorf("%w: missing step arrays", ErrCorruptDataset)
	}
	schema := Schema{
		ObservationShape: file.ObservationShape,
		ActionSize:       file.ActionSize,
		Discrete:         file.DiscreteAction,
	}
	d, err := NewDataset(schema, file.Observations, file.Actions, file.Rewards, file.Terminals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDataset, err)
	}
	return d, nil
}
