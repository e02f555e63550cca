package trace

import (
	"log"

	"github.com/sarchlab/ddr4stim/datarecording"
	"github.com/sarchlab/ddr4stim/sim/hooking"
	"github.com/sarchlab/ddr4stim/sim/timing"
)

// CommandTable is the table that holds one row per command.
const CommandTable = "commands"

// CommandLogger is a hook that prints the start and the end of every command.
type CommandLogger struct {
	cycleTeller timing.CycleTeller
	logger      *log.Logger
}

// NewCommandLogger creates a new CommandLogger.
func NewCommandLogger(
	logger *log.Logger,
	cycleTeller timing.CycleTeller,
) *CommandLogger {
	return &CommandLogger{
		cycleTeller: cycleTeller,
		logger:      logger,
	}
}

// Func prints the command events.
func (l *CommandLogger) Func(ctx hooking.HookCtx) {
	now := l.cycleTeller.Now()

	switch ctx.Pos {
	case hooking.HookPosTaskStart:
		task := ctx.Item.(hooking.TaskStart)
		l.logger.Printf("start, %d, %s, %s, %v\n",
			now, task.Where, task.ID, ctx.Detail)
	case hooking.HookPosTaskTag:
		tag := ctx.Item.(hooking.TaskTag)
		l.logger.Printf("tag, %d, %s, %s\n", now, tag.TaskID, tag.What)
	case hooking.HookPosTaskEnd:
		end := ctx.Item.(hooking.TaskEnd)
		if end.Err != "" {
			l.logger.Printf("reject, %d, %s, %s\n", now, end.ID, end.Err)
			return
		}

		l.logger.Printf("end, %d, %s\n", now, end.ID)
	}
}

// CommandEntry is a row of the command table. Tags are comma separated.
type CommandEntry struct {
	ID         string
	Location   string
	What       string
	StartCycle uint64
	EndCycle   uint64
	NumSteps   int
	Tags       string
	Err        string
}

type commandBackend struct {
	recorder datarecording.DataRecorder
}

func (b *commandBackend) Write(t hooking.Task) {
	tags := ""
	for i, tag := range t.Tags {
		if i > 0 {
			tags += ","
		}

		tags += tag.What
	}

	b.recorder.InsertData(CommandTable, CommandEntry{
		ID:         t.ID,
		Location:   t.Where,
		What:       t.What,
		StartCycle: uint64(t.StartCycle),
		EndCycle:   uint64(t.EndCycle),
		NumSteps:   len(t.Steps),
		Tags:       tags,
		Err:        t.Err,
	})
}

func (b *commandBackend) Flush() {
	b.recorder.Flush()
}

// NewCommandRecorder creates a hook that stores every finished command as a
// row of the command table.
func NewCommandRecorder(
	recorder datarecording.DataRecorder,
	cycleTeller timing.CycleTeller,
) *hooking.TaskTracer {
	recorder.CreateTable(CommandTable, CommandEntry{})

	return hooking.NewTaskTracer(cycleTeller, &commandBackend{recorder: recorder})
}
