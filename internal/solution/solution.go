// Package solution saves, loads and verifies solutions of FreeCell deals, in JSON.
package solution

import (
	"encoding/json"
	"os"
	"time"

	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/pkg/errors"
)

// File holds the result of solving one deal.
type File struct {
	// Seed is the Microsoft deal number.
	Seed     int    `json:"seed"`
	Strategy string `json:"strategy,omitempty"`

	// InitialState, if set, is the hex packed state the search started from, instead of the deal
	// given by Seed.
	InitialState string `json:"initial_state,omitempty"`

	Solved    bool              `json:"solved"`
	Outcome   searchers.Outcome `json:"outcome"`
	MoveCount int               `json:"move_count"`
	ElapsedMs int64             `json:"execution_time_ms"`
	Timestamp time.Time         `json:"timestamp"`

	Stats         *searchers.Stats `json:"stats,omitempty"`
	SolutionMoves []state.Move     `json:"solution_moves"`
}

// New creates a File from the result of a search.
func New(seed int, strategy string, result searchers.Result) *File {
	stats := result.Stats
	f := &File{
		Seed:      seed,
		Strategy:  strategy,
		Solved:    result.Solved(),
		Outcome:   result.Outcome,
		ElapsedMs: stats.Elapsed.Milliseconds(),
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Stats:     &stats,
	}
	if f.Solved {
		f.SolutionMoves = result.Moves
		f.MoveCount = len(result.Moves)
	}
	return f
}

// WithInitialState records the state the search started from, for searches that didn't start from
// the deal of f.Seed. It returns f itself.
func (f *File) WithInitialState(gs *state.GameState) *File {
	f.InitialState = state.Pack(gs).String()
	return f
}

// Initial returns the state the solution starts from: InitialState if set, otherwise the deal of Seed.
func (f *File) Initial() (*state.GameState, error) {
	if f.InitialState != "" {
		gs, err := state.UnpackString(f.InitialState)
		return gs, errors.WithMessagef(err, "initial state of solution for deal #%d", f.Seed)
	}
	return state.NewDeal(f.Seed)
}

// temporaryName used while writing a file, before it is renamed to its final name.
func temporaryName(path string) string {
	return path + "~tmp"
}

// backupName of the previous version of a file.
func backupName(path string) string {
	return path + "~"
}

// Save the solution as indented JSON, see WriteFileAtomic.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode solution of deal #%d", f.Seed)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary file, and renames it to path. A previous file at path is
// kept as a backup, with a "~" appended to its name.
func WriteFileAtomic(path string, data []byte) error {
	tmpPath := temporaryName(path)
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %q", tmpPath)
	}
	if _, err := os.Stat(path); err == nil {
		if err = os.Rename(path, backupName(path)); err != nil {
			return errors.Wrapf(err, "failed backing up, while renaming %q to %q", path, backupName(path))
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to rename %q to %q", tmpPath, path)
	}
	return nil
}

// Load a solution saved with File.Save.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read solution")
	}
	f := &File{}
	if err = json.Unmarshal(data, f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse solution in %q", path)
	}
	if f.MoveCount != len(f.SolutionMoves) {
		return nil, errors.Errorf("solution in %q has move_count=%d, but %d moves listed",
			path, f.MoveCount, len(f.SolutionMoves))
	}
	return f, nil
}

// Verify replays the moves on a copy of initial and returns an error if any of them is invalid, or if
// the game is not won at the end. The initial state is not changed.
func Verify(initial *state.GameState, moves []state.Move) error {
	gs := initial.Clone()
	for ii, m := range moves {
		if err := gs.Execute(m); err != nil {
			return errors.WithMessagef(err, "move #%d of the solution", ii)
		}
	}
	if !gs.IsWon() {
		return errors.Errorf("the game is not won after the %d moves of the solution, %d cards in the foundations",
			len(moves), gs.CardsInFoundations())
	}
	return nil
}

// Verify the solution in the file against its initial state, see File.Initial.
func (f *File) Verify() error {
	if !f.Solved {
		return errors.Errorf("deal #%d is not marked as solved", f.Seed)
	}
	gs, err := f.Initial()
	if err != nil {
		return err
	}
	return Verify(gs, f.SolutionMoves)
}
