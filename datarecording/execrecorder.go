package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecTable is the table that describes the run that produced a database.
const ExecTable = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is a row of the exec table.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records the command line, the settings, and the start and end
// time of a run.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecTable, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start notes the start time and the command line.
func (e *ExecRecorder) Start() {
	e.Add("Start Time", time.Now().Format(execTimeFormat))
	e.Add("Command", strings.Join(os.Args, " "))

	if wd, err := os.Getwd(); err == nil {
		e.Add("Working Directory", wd)
	}
}

// Add notes one property of the run.
func (e *ExecRecorder) Add(property, value string) {
	e.entries = append(e.entries, ExecInfo{Property: property, Value: value})
}

// End writes the noted properties and the end time.
func (e *ExecRecorder) End() {
	e.Add("End Time", time.Now().Format(execTimeFormat))

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
