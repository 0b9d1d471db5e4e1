package model

import "github.com/questx-lab/settlement/pkg/enum"

type EventType string

var (
	EntryAcceptedEvent   = enum.New(EventType("entry_accepted"), "entry_accepted")
	DrawRequestedEvent   = enum.New(EventType("draw_requested"), "draw_requested")
	DrawResolvedEvent    = enum.New(EventType("draw_resolved"), "draw_resolved")
	PayoutCompletedEvent = enum.New(EventType("payout_completed"), "payout_completed")
	LotteryResetEvent    = enum.New(EventType("lottery_reset"), "lottery_reset")
)

// Event is published after the instruction which emitted it is committed.
// Fields which do not apply to a type are left empty.
type Event struct {
	ID          int64     `json:"id"`
	Type        EventType `json:"type"`
	Instruction string    `json:"instruction"`
	LotteryID   uint64    `json:"lottery_id"`

	User              string `json:"user,omitempty"`
	SequenceNumber    uint64 `json:"sequence_number,omitempty"`
	TotalParticipants uint64 `json:"total_participants,omitempty"`

	// Winner is 1-indexed, 0 means none.
	Winner uint64 `json:"winner,omitempty"`
	Amount uint64 `json:"amount,omitempty"`
	Fee    uint64 `json:"fee,omitempty"`

	Timestamp int64 `json:"timestamp"`
}

// Effects collects the events of one instruction. Responses embed it.
type Effects struct {
	events []Event
}

func (e *Effects) Emit(ev Event) {
	e.events = append(e.events, ev)
}

func (e *Effects) Emitted() []Event {
	return e.events
}
