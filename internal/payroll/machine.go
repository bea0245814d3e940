package payroll

import "github.com/dvloznov/backoffice/internal/sheet"

// State is the row-pairing state.
type State int

const (
	ExpectingRecordStart State = iota
	ExpectingContinuation
)

func (s State) String() string {
	if s == ExpectingContinuation {
		return "ExpectingContinuation"
	}
	return "ExpectingRecordStart"
}

// RowKind classifies a physical row for the state machine.
type RowKind int

const (
	// RowStart has both an ID and a name.
	RowStart RowKind = iota
	// RowContinuation has neither.
	RowContinuation
	// RowOther is anything else, such as a totals line with a label only.
	RowOther
	// EndOfInput is the virtual row after the last one.
	EndOfInput
)

// Action is what the machine does with the current row.
type Action int

const (
	ActSkip Action = iota
	ActOpen
	ActEmitAndOpen
	ActMergeAndEmit
	ActEmit
	ActDone
)

// Transition is one cell of the transition table.
type Transition struct {
	Action Action
	Next   State
}

// Transitions is the complete table; every (state, kind) pair is present.
var Transitions = map[State]map[RowKind]Transition{
	ExpectingRecordStart: {
		RowStart:        {ActOpen, ExpectingContinuation},
		RowContinuation: {ActSkip, ExpectingRecordStart},
		RowOther:        {ActSkip, ExpectingRecordStart},
		EndOfInput:      {ActDone, ExpectingRecordStart},
	},
	ExpectingContinuation: {
		RowStart:        {ActEmitAndOpen, ExpectingContinuation},
		RowContinuation: {ActMergeAndEmit, ExpectingRecordStart},
		RowOther:        {ActEmit, ExpectingRecordStart},
		EndOfInput:      {ActEmit, ExpectingRecordStart},
	},
}

// Group is one employee's record: a start row plus an optional
// continuation row.
type Group struct {
	Start        sheet.Row
	Continuation *sheet.Row
}

// Get returns the start row's value for col, or the continuation row's
// value when the start row left it blank.
func (g Group) Get(col string) string {
	if v := g.Start.Get(col); v != "" {
		return v
	}
	if g.Continuation != nil {
		return g.Continuation.Get(col)
	}
	return ""
}

// Classify returns the row kind.
func Classify(row sheet.Row) RowKind {
	id := row.Get(ColID)
	name := row.Get(ColName)
	switch {
	case id != "" && name != "":
		return RowStart
	case id == "" && name == "":
		return RowContinuation
	default:
		return RowOther
	}
}

// Pair runs the state machine over rows and returns the record groups in
// order.
func Pair(rows []sheet.Row) []Group {
	var (
		groups []Group
		open   *Group
		state  = ExpectingRecordStart
	)

	emit := func() {
		if open != nil {
			groups = append(groups, *open)
			open = nil
		}
	}

	for i := 0; i <= len(rows); i++ {
		kind := EndOfInput
		if i < len(rows) {
			kind = Classify(rows[i])
		}
		t := Transitions[state][kind]

		switch t.Action {
		case ActOpen:
			open = &Group{Start: rows[i]}
		case ActEmitAndOpen:
			emit()
			open = &Group{Start: rows[i]}
		case ActMergeAndEmit:
			cont := rows[i]
			open.Continuation = &cont
			emit()
		case ActEmit:
			emit()
		case ActSkip, ActDone:
		}
		state = t.Next
	}
	return groups
}
