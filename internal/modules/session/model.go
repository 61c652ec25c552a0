// README: Session aggregate and dialogue state definitions.
package session

import (
	"time"

	"yahu/internal/ai"
	"yahu/internal/modules/places"
	"yahu/internal/types"
)

// State is the current step of the booking dialogue.
type State string

const (
	StateAskDestination    State = "ask_destination"
	StateChooseDestination State = "choose_destination"
	StateAskPickup         State = "ask_pickup"
	StateChoosePickup      State = "choose_pickup"
	StateAskTime           State = "ask_time"
	StateAskCarType        State = "ask_car_type"
	StateAskAudio          State = "ask_audio"
	StateAskReciter        State = "ask_reciter"
	StateConfirmBooking    State = "confirm_booking"
)

// Session is one active conversation. It is only ever reachable through its
// id and is never shared across ids.
type Session struct {
	ID string `json:"id"`

	// Origin is the coordinate pair supplied by the client at session
	// start. Immutable; biases place search and resolves "my current
	// location".
	Origin types.Point `json:"origin"`
	// OriginText is the reverse-geocoded display form of Origin.
	OriginText string `json:"origin_text"`

	State State `json:"state"`

	// Slots maps slot name to the filled display value.
	Slots map[string]string `json:"slots"`

	// PickupLoc and DestinationLoc hold resolved coordinates for the two
	// location slots, used for the trip estimate.
	PickupLoc      *types.Point `json:"pickup_loc,omitempty"`
	DestinationLoc *types.Point `json:"destination_loc,omitempty"`

	// PendingCandidates is non-empty only while State is a choose_* state.
	PendingCandidates []places.Candidate `json:"pending_candidates,omitempty"`

	// History is the conversation fed to the LLM for chit-chat replies.
	History []ai.Message `json:"history,omitempty"`

	LastActive time.Time `json:"last_active"`
}

// InChoiceState reports whether the session is waiting on a disambiguation pick.
func (s *Session) InChoiceState() bool {
	return s.State == StateChooseDestination || s.State == StateChoosePickup
}
