// README: Declarative slot definitions and keyword tables driving the dialogue.
package dialog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"yahu/internal/modules/pricing"
	"yahu/internal/modules/session"
)

// Slot names. Keys into Session.Slots.
const (
	SlotDestination = "destination"
	SlotPickup      = "pickup"
	SlotTime        = "time"
	SlotCarType     = "carType"
	SlotAudio       = "audioPreference"
	SlotReciter     = "reciter"
)

// Canonical slot values.
const (
	TimeNow         = "الآن"
	AudioRecitation = "قرآن"
	AudioMusic      = "موسيقى"
	AudioSilence    = "صمت"
)

type slotKind int

const (
	slotLocation slotKind = iota
	slotFreeText
	slotEnum
)

// keywordRule maps containment of any keyword to a canonical value.
// Rules are evaluated in priority order; the first hit wins.
type keywordRule struct {
	Keywords []string
	Value    string
}

// slotDef describes one piece of booking information the dialogue collects.
// Adding a slot means adding an entry here, not new branching code.
type slotDef struct {
	Name        string
	Kind        slotKind
	AskState    session.State
	ChooseState session.State // location slots only

	// Normalize canonicalizes free-text input (freetext slots).
	Normalize func(input string, now time.Time) string

	// Rules and Default classify enum slots.
	Rules   []keywordRule
	Default string

	// AllowCurrentLocation enables the "my current location" shortcut.
	AllowCurrentLocation bool

	// Skip drops the slot for this session when it returns true.
	Skip func(s *session.Session) bool
}

// slotDefs is the ordered collection of booking slots. Destination is always
// filled before pickup, pickup before time, and so on.
var slotDefs = []slotDef{
	{
		Name:        SlotDestination,
		Kind:        slotLocation,
		AskState:    session.StateAskDestination,
		ChooseState: session.StateChooseDestination,
	},
	{
		Name:                 SlotPickup,
		Kind:                 slotLocation,
		AskState:             session.StateAskPickup,
		ChooseState:          session.StateChoosePickup,
		AllowCurrentLocation: true,
	},
	{
		Name:      SlotTime,
		Kind:      slotFreeText,
		AskState:  session.StateAskTime,
		Normalize: normalizeTime,
	},
	{
		Name:     SlotCarType,
		Kind:     slotEnum,
		AskState: session.StateAskCarType,
		Rules: []keywordRule{
			{Keywords: []string{"vip", "في آي بي", "فاخرة"}, Value: pricing.CarTypeVIP},
		},
		Default: pricing.CarTypeStandard,
	},
	{
		Name:     SlotAudio,
		Kind:     slotEnum,
		AskState: session.StateAskAudio,
		Rules: []keywordRule{
			{Keywords: []string{"قرآن", "قران"}, Value: AudioRecitation},
			{Keywords: []string{"موسيقى", "موسيقا", "أغاني"}, Value: AudioMusic},
		},
		Default: AudioSilence,
	},
	{
		Name:      SlotReciter,
		Kind:      slotFreeText,
		AskState:  session.StateAskReciter,
		Normalize: func(input string, _ time.Time) string { return strings.TrimSpace(input) },
		Skip: func(s *session.Session) bool {
			return s.Slots[SlotAudio] != AudioRecitation
		},
	},
}

// matchEnum classifies input against the slot's keyword rules.
func matchEnum(def slotDef, input string) string {
	lower := strings.ToLower(input)
	for _, rule := range def.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Value
			}
		}
	}
	return def.Default
}

// nowSynonyms normalize to the canonical immediate-departure value.
var nowSynonyms = []string{"الآن", "الان", "حالا", "حاضر", "فوري", "now"}

// relativeMinutesRe extracts "بعد N دقيقة" / "in N minutes" style offsets.
var relativeMinutesRe = regexp.MustCompile(`(?:بعد|in)\s+(\d{1,3})\s*(?:دقيقة|دقائق|دقيقه|min)`)

// normalizeTime canonicalizes "now" synonyms, converts a relative minute
// offset to a clock time, and otherwise keeps the input verbatim.
func normalizeTime(input string, now time.Time) string {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)
	for _, syn := range nowSynonyms {
		if lower == syn {
			return TimeNow
		}
	}
	if m := relativeMinutesRe.FindStringSubmatch(lower); m != nil {
		var mins int
		fmt.Sscanf(m[1], "%d", &mins)
		return now.Add(time.Duration(mins) * time.Minute).Format("15:04")
	}
	return trimmed
}

// currentLocationPhrases are the literal inputs meaning "use my current location".
var currentLocationPhrases = []string{"موقعي", "موقعي الحالي", "الموقع الحالي"}

func isCurrentLocation(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, p := range currentLocationPhrases {
		if lower == p {
			return true
		}
	}
	return false
}

// affirmatives confirm the booking; anything else in confirm_booking cancels.
var affirmatives = []string{"نعم", "موافق", "أكد", "تأكيد", "yes", "ok"}

func isAffirmative(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, a := range affirmatives {
		if lower == a {
			return true
		}
	}
	return false
}

// resetCommands abort the whole dialogue mid-flow.
var resetCommands = []string{"إلغاء الحجز", "من جديد", "ابدأ من جديد", "restart"}

func isResetCommand(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, r := range resetCommands {
		if lower == r {
			return true
		}
	}
	return false
}

// chitChatWords flag off-topic small talk handled by the LLM detour.
var chitChatWords = []string{
	"كيفك", "شلونك", "السلام عليكم", "مرحبا", "هاي", "من أنت", "مين أنت",
	"شو بتسوي", "شو في", "كيف الجو", "شو أخبارك", "شخبارك", "وينك", "شكرا", "يسلمو",
	"ثانكس", "thanks", "thx", "good", "nice", "help", "مساعدة",
}

// isChitChat reports whether input should take the small-talk detour: either
// a greeting/thanks keyword, or a message too short to be a place name while
// a location slot is being asked.
func isChitChat(input string, state session.State) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, w := range chitChatWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	if state == session.StateAskDestination || state == session.StateAskPickup {
		if len([]rune(lower)) < 5 {
			return true
		}
	}
	return false
}
