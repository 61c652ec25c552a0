// README: Dialogue engine: slot-filling state machine for the booking conversation.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"yahu/internal/ai"
	"yahu/internal/maps"
	"yahu/internal/modules/booking"
	"yahu/internal/modules/places"
	"yahu/internal/modules/session"
	"yahu/internal/types"
)

// PlaceResolver is the slice of the place matcher the engine needs.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string, origin types.Point) []places.Candidate
	Detail(ctx context.Context, ref string) (places.ResolvedPlace, error)
}

// Geocoder resolves coordinates to a display address at session start.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

// RouteEstimator supplies the optional travel-time line of the summary.
type RouteEstimator interface {
	GetTravelEstimate(ctx context.Context, origin, destination types.Point) (time.Duration, string, error)
}

// FareEstimator supplies the fare line of the summary.
type FareEstimator interface {
	Estimate(distanceKm float64, carType string) types.Money
}

// BookingLog records one confirmed booking.
type BookingLog interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (*booking.Booking, error)
}

// TurnRequest is one inbound conversational turn.
type TurnRequest struct {
	SessionID string
	UserInput string
	Lat       *float64
	Lng       *float64
}

// TurnResponse is the bot's reply. Done signals the session reached a
// terminal state and was removed; the client must start fresh afterwards.
type TurnResponse struct {
	SessionID  string `json:"sessionId"`
	BotMessage string `json:"botMessage"`
	Done       bool   `json:"done"`
}

type Deps struct {
	Store    session.Store
	Places   PlaceResolver
	Geo      Geocoder
	Routes   RouteEstimator
	Fares    FareEstimator
	Bookings BookingLog
	LLM      ai.LLMProvider
}

// Engine walks a session through the ordered booking slots. Turns for the
// same session are serialized; unrelated sessions proceed in parallel.
type Engine struct {
	store    session.Store
	places   PlaceResolver
	geo      Geocoder
	routes   RouteEstimator
	fares    FareEstimator
	bookings BookingLog
	llm      ai.LLMProvider

	locks *keyedMutex

	now  func() time.Time
	pick func(n int) int
}

func NewEngine(deps Deps) *Engine {
	return &Engine{
		store:    deps.Store,
		places:   deps.Places,
		geo:      deps.Geo,
		routes:   deps.Routes,
		fares:    deps.Fares,
		bookings: deps.Bookings,
		llm:      deps.LLM,
		locks:    newKeyedMutex(),
		now:      time.Now,
		pick:     rand.Intn,
	}
}

const maxHistory = 20

// HandleTurn processes one turn. Resolution failures never surface as
// errors: the engine stays in state and asks the user to clarify. A returned
// error means an unexpected internal fault; the session is preserved so the
// same state can be retried.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if req.SessionID == "" {
		return e.startSession(ctx, req)
	}

	unlock := e.locks.lock(req.SessionID)
	defer unlock()

	sess, err := e.store.Get(ctx, req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return e.startSession(ctx, req)
	}
	if err != nil {
		return TurnResponse{}, err
	}

	input := strings.TrimSpace(req.UserInput)

	if isResetCommand(input) {
		if err := e.store.Delete(ctx, sess.ID); err != nil {
			return TurnResponse{}, err
		}
		return TurnResponse{SessionID: sess.ID, BotMessage: msgReset, Done: true}, nil
	}

	e.recordMessage(sess, ai.RoleUser, input)

	if isChitChat(input, sess.State) {
		msg := e.chitChat(ctx, sess)
		e.recordMessage(sess, ai.RoleAssistant, msg)
		if err := e.store.Save(ctx, sess); err != nil {
			return TurnResponse{}, err
		}
		return TurnResponse{SessionID: sess.ID, BotMessage: msg}, nil
	}

	msg, done, err := e.advance(ctx, sess, input)
	if err != nil {
		return TurnResponse{}, err
	}
	if done {
		if err := e.store.Delete(ctx, sess.ID); err != nil {
			return TurnResponse{}, err
		}
		return TurnResponse{SessionID: sess.ID, BotMessage: msg, Done: true}, nil
	}

	e.recordMessage(sess, ai.RoleAssistant, msg)
	if err := e.store.Save(ctx, sess); err != nil {
		return TurnResponse{}, err
	}
	return TurnResponse{SessionID: sess.ID, BotMessage: msg}, nil
}

// startSession creates a new session when the id is absent or unknown.
// Coordinates are required; without them no session is created.
func (e *Engine) startSession(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return TurnResponse{BotMessage: msgNeedLocation}, nil
	}

	origin := types.Point{Lat: *req.Lat, Lng: *req.Lng}
	originText := "موقعك الحالي"
	if addr, err := e.geo.ReverseGeocode(ctx, origin); err == nil {
		if short := maps.ShortenAddress(addr); short != "" {
			originText = short
		}
	}

	welcome := e.prompt(session.StateAskDestination)
	sess := &session.Session{
		Origin:     origin,
		OriginText: originText,
		State:      session.StateAskDestination,
		Slots:      make(map[string]string),
		History:    []ai.Message{{Role: ai.RoleAssistant, Content: welcome}},
	}
	if err := e.store.Create(ctx, sess); err != nil {
		return TurnResponse{}, err
	}
	return TurnResponse{SessionID: sess.ID, BotMessage: welcome}, nil
}

// advance dispatches the turn to the slot owning the current state.
func (e *Engine) advance(ctx context.Context, sess *session.Session, input string) (string, bool, error) {
	if sess.State == session.StateConfirmBooking {
		return e.handleConfirm(ctx, sess, input)
	}
	for _, def := range slotDefs {
		if sess.State == def.AskState {
			return e.handleAsk(ctx, sess, def, input)
		}
		if def.Kind == slotLocation && sess.State == def.ChooseState {
			return e.handleChoose(ctx, sess, def, input)
		}
	}
	return msgServerError, false, nil
}

func (e *Engine) handleAsk(ctx context.Context, sess *session.Session, def slotDef, input string) (string, bool, error) {
	switch def.Kind {
	case slotLocation:
		return e.handleLocationQuery(ctx, sess, def, input)
	case slotFreeText:
		sess.Slots[def.Name] = def.Normalize(input, e.now())
	case slotEnum:
		sess.Slots[def.Name] = matchEnum(def, input)
	}
	return e.enterNextSlot(ctx, sess, def), false, nil
}

// handleLocationQuery runs the matcher for a location slot and branches on
// the candidate count: 0 stays in state, 1 fills the slot, 2+ enters the
// disambiguation sub-state.
func (e *Engine) handleLocationQuery(ctx context.Context, sess *session.Session, def slotDef, input string) (string, bool, error) {
	if def.AllowCurrentLocation && isCurrentLocation(input) {
		sess.Slots[def.Name] = sess.OriginText
		e.setSlotLocation(sess, def.Name, sess.Origin)
		sess.PendingCandidates = nil
		return e.enterNextSlot(ctx, sess, def), false, nil
	}

	candidates := e.places.Resolve(ctx, input, sess.Origin)
	switch len(candidates) {
	case 0:
		return notFoundMessage(def, sess.State == def.ChooseState), false, nil
	case 1:
		return e.fillLocationSlot(ctx, sess, def, candidates[0])
	default:
		sess.PendingCandidates = candidates
		sess.State = def.ChooseState
		return candidateList(def, candidates), false, nil
	}
}

// handleChoose resolves a numbered pick from the pending candidates. A
// numeric index outside [1,N] never advances state; non-numeric input is
// re-run as a fresh query for the same slot.
func (e *Engine) handleChoose(ctx context.Context, sess *session.Session, def slotDef, input string) (string, bool, error) {
	if idx, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if idx >= 1 && idx <= len(sess.PendingCandidates) {
			return e.fillLocationSlot(ctx, sess, def, sess.PendingCandidates[idx-1])
		}
		return notFoundMessage(def, true), false, nil
	}
	return e.handleLocationQuery(ctx, sess, def, input)
}

// fillLocationSlot fetches candidate detail, writes the slot and moves on.
// Detail failures degrade to the not-found reply in the current state.
func (e *Engine) fillLocationSlot(ctx context.Context, sess *session.Session, def slotDef, cand places.Candidate) (string, bool, error) {
	place, err := e.places.Detail(ctx, cand.Ref)
	if err != nil {
		return notFoundMessage(def, sess.State == def.ChooseState), false, nil
	}

	display := maps.StripCountrySuffix(place.Address)
	sess.Slots[def.Name] = display
	e.setSlotLocation(sess, def.Name, place.Location)
	sess.PendingCandidates = nil

	next := e.enterNextSlot(ctx, sess, def)
	if def.Name == SlotDestination {
		return fmt.Sprintf("✔️ تم اختيار الوجهة: %s.\n%s", display, next), false, nil
	}
	return next, false, nil
}

func (e *Engine) setSlotLocation(sess *session.Session, name string, p types.Point) {
	switch name {
	case SlotDestination:
		sess.DestinationLoc = &p
	case SlotPickup:
		sess.PickupLoc = &p
	}
}

// enterNextSlot advances to the next unskipped slot, or to the confirmation
// summary when every slot is filled.
func (e *Engine) enterNextSlot(ctx context.Context, sess *session.Session, current slotDef) string {
	idx := -1
	for i, def := range slotDefs {
		if def.Name == current.Name {
			idx = i
			break
		}
	}
	for _, def := range slotDefs[idx+1:] {
		if def.Skip != nil && def.Skip(sess) {
			continue
		}
		sess.State = def.AskState
		return e.prompt(def.AskState)
	}
	sess.State = session.StateConfirmBooking
	return e.buildSummary(ctx, sess)
}

func (e *Engine) handleConfirm(ctx context.Context, sess *session.Session, input string) (string, bool, error) {
	if !isAffirmative(input) {
		return msgCancelled, true, nil
	}

	distKm := e.tripDistanceKm(sess)
	var fare types.Money
	if e.fares != nil {
		fare = e.fares.Estimate(distKm, sess.Slots[SlotCarType])
	}

	b, err := e.bookings.Create(ctx, booking.CreateCommand{
		Pickup:        sess.Slots[SlotPickup],
		Destination:   sess.Slots[SlotDestination],
		PickupTime:    sess.Slots[SlotTime],
		CarType:       sess.Slots[SlotCarType],
		AudioPref:     sess.Slots[SlotAudio],
		Reciter:       sess.Slots[SlotReciter],
		DistanceKm:    distKm,
		EstimatedFare: fare,
	})
	if err != nil {
		log.Printf("dialog: booking create: %v", err)
		return "", false, err
	}

	msg := fmt.Sprintf(`🎉 تم تأكيد حجزك بنجاح!
رقم الحجز: %d

📱 ستصلك رسالة تأكيد قريباً
🚗 السائق في الطريق إليك
⏱️ الوقت المتوقع: 5-10 دقائق

شكراً لاستخدامك خدمة يا هو! 🚖`, b.Code)
	return msg, true, nil
}

// buildSummary renders the confirmation overview with an optional trip estimate.
func (e *Engine) buildSummary(ctx context.Context, sess *session.Session) string {
	var b strings.Builder
	b.WriteString("✔️ ملخص طلبك:\n")
	fmt.Fprintf(&b, "📍 من: %s\n", sess.Slots[SlotPickup])
	fmt.Fprintf(&b, "🎯 إلى: %s\n", sess.Slots[SlotDestination])
	fmt.Fprintf(&b, "⏰ الوقت: %s\n", sess.Slots[SlotTime])
	fmt.Fprintf(&b, "🚗 نوع السيارة: %s\n", sess.Slots[SlotCarType])
	fmt.Fprintf(&b, "🎵 الصوت: %s\n", sess.Slots[SlotAudio])
	if r := sess.Slots[SlotReciter]; r != "" {
		fmt.Fprintf(&b, "🎙️ القارئ: %s\n", r)
	}
	if est := e.tripEstimate(ctx, sess); est != "" {
		b.WriteString(est)
	}
	b.WriteString("\nهل تؤكد الحجز؟ (نعم/لا)")
	return b.String()
}

// tripEstimate is best-effort: any missing coordinate or provider failure
// just drops the corresponding line.
func (e *Engine) tripEstimate(ctx context.Context, sess *session.Session) string {
	if sess.PickupLoc == nil || sess.DestinationLoc == nil {
		return ""
	}
	distKm := e.tripDistanceKm(sess)

	var b strings.Builder
	fmt.Fprintf(&b, "📏 المسافة التقريبية: %.1f كم\n", distKm)
	if e.routes != nil {
		if dur, _, err := e.routes.GetTravelEstimate(ctx, *sess.PickupLoc, *sess.DestinationLoc); err == nil {
			fmt.Fprintf(&b, "⏱️ مدة الرحلة المتوقعة: %d دقيقة\n", int(dur.Minutes()))
		}
	}
	if e.fares != nil {
		fare := e.fares.Estimate(distKm, sess.Slots[SlotCarType])
		fmt.Fprintf(&b, "💵 الكلفة التقديرية: %d %s\n", fare.Amount, displayCurrency(fare.Currency))
	}
	return b.String()
}

func (e *Engine) tripDistanceKm(sess *session.Session) float64 {
	if sess.PickupLoc == nil || sess.DestinationLoc == nil {
		return 0
	}
	return types.HaversineKm(*sess.PickupLoc, *sess.DestinationLoc)
}

// chitChat produces the small-talk detour reply: LLM answer plus the current
// step question so the booking can continue.
func (e *Engine) chitChat(ctx context.Context, sess *session.Session) string {
	stepQ := e.stepQuestion(sess.State)
	if e.llm == nil {
		return msgLLMTrouble + "\n\n" + stepQ
	}
	reply, err := e.llm.Generate(ctx, assistantSystemPrompt, sess.History)
	if err != nil {
		log.Printf("dialog: llm: %v", err)
		return msgLLMTrouble + "\n\n" + stepQ
	}
	return reply + "\n\n" + stepQ
}

func (e *Engine) prompt(state session.State) string {
	variants := promptsByState[state]
	if len(variants) == 0 {
		return msgFallback
	}
	return variants[e.pick(len(variants))]
}

func (e *Engine) stepQuestion(state session.State) string {
	if _, ok := promptsByState[state]; ok {
		return e.prompt(state)
	}
	return msgFallback
}

func (e *Engine) recordMessage(sess *session.Session, role, content string) {
	if content == "" {
		return
	}
	sess.History = append(sess.History, ai.Message{Role: role, Content: content})
	if len(sess.History) > maxHistory {
		sess.History = sess.History[len(sess.History)-maxHistory:]
	}
}

func notFoundMessage(def slotDef, choosing bool) string {
	if def.Name == SlotPickup {
		if choosing {
			return msgPickupChoiceLost
		}
		return msgPickupNotFound
	}
	if choosing {
		return msgChoiceNotFound
	}
	return msgDestinationNotFound
}

func displayCurrency(code string) string {
	if code == "SYP" {
		return "ل.س"
	}
	return code
}

func candidateList(def slotDef, cands []places.Candidate) string {
	header := msgMultipleFound
	if def.Name == SlotPickup {
		header = msgMultiplePickupFound
	}
	var b strings.Builder
	b.WriteString(header + "\n")
	for i, c := range cands {
		fmt.Fprintf(&b, "%d. %s\n", i+1, maps.StripCountrySuffix(c.DisplayText))
	}
	b.WriteString(msgPickFromList)
	return b.String()
}
