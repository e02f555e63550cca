// Package simulation keeps the pieces of one stimulus run together.
package simulation

import (
	"encoding/json"
	"log"
	"os"

	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/sim/id"
	"github.com/sarchlab/ddr4stim/sim/naming"
)

// A StateHolder is a component whose state can be saved.
type StateHolder interface {
	naming.Named

	State() any
}

// A Simulation provides the services shared by the components of a run.
type Simulation struct {
	id          string
	idGenerator id.IDGenerator
	recorder    datarecording.DataRecorder

	components   []naming.Named
	compByName   map[string]naming.Named
	stateHolders []StateHolder
}

// NewSimulation creates a new simulation with a unique ID.
func NewSimulation() *Simulation {
	return &Simulation{
		id:          id.NewUniqueIDGenerator().Generate(),
		idGenerator: id.NewIDGenerator(),
		compByName:  make(map[string]naming.Named),
	}
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetIDGenerator returns the generator of the task IDs of the run.
func (s *Simulation) GetIDGenerator() id.IDGenerator {
	return s.idGenerator
}

// RegisterDataRecorder sets the recorder shared by the tracers of the run.
func (s *Simulation) RegisterDataRecorder(r datarecording.DataRecorder) {
	s.recorder = r
}

// GetDataRecorder returns the shared recorder, or nil if there is none.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// RegisterComponent registers a component. Names must be unique.
func (s *Simulation) RegisterComponent(c naming.Named) {
	name := c.Name()
	if _, ok := s.compByName[name]; ok {
		log.Panicf("component %s already registered", name)
	}

	s.components = append(s.components, c)
	s.compByName[name] = c

	if h, ok := c.(StateHolder); ok {
		s.stateHolders = append(s.stateHolders, h)
	}
}

// Components returns the registered components, in registration order.
func (s *Simulation) Components() []naming.Named {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) naming.Named {
	return s.compByName[name]
}

// Save writes the state of every state holder as a JSON object keyed by
// component name.
func (s *Simulation) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	data := map[string]any{"simulation": s.id}
	for _, h := range s.stateHolders {
		data[h.Name()] = h.State()
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// Terminate flushes the shared recorder.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Flush()
	}
}
