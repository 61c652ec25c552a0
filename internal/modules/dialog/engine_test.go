package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"yahu/internal/ai"
	"yahu/internal/modules/booking"
	"yahu/internal/modules/places"
	"yahu/internal/modules/pricing"
	"yahu/internal/modules/session"
	"yahu/internal/types"
)

type fakeResolver struct {
	results map[string][]places.Candidate
	details map[string]places.ResolvedPlace
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, query string, _ types.Point) []places.Candidate {
	f.calls = append(f.calls, query)
	return f.results[query]
}

func (f *fakeResolver) Detail(_ context.Context, ref string) (places.ResolvedPlace, error) {
	p, ok := f.details[ref]
	if !ok {
		return places.ResolvedPlace{}, errors.New("unknown ref")
	}
	return p, nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) ReverseGeocode(context.Context, types.Point) (string, error) {
	return f.address, f.err
}

type fakeRoutes struct {
	duration time.Duration
	err      error
}

func (f *fakeRoutes) GetTravelEstimate(context.Context, types.Point, types.Point) (time.Duration, string, error) {
	return f.duration, "5 km", f.err
}

type fakeBookings struct {
	created []booking.CreateCommand
	err     error
}

func (f *fakeBookings) Create(_ context.Context, cmd booking.CreateCommand) (*booking.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cmd)
	return &booking.Booking{ID: "b1", Code: 12345}, nil
}

type testEnv struct {
	engine   *Engine
	store    *session.MemoryStore
	resolver *fakeResolver
	bookings *fakeBookings
	llmReply string
	llmErr   error
}

type envLLM struct{ env *testEnv }

func (l envLLM) Generate(_ context.Context, _ string, _ []ai.Message) (string, error) {
	return l.env.llmReply, l.env.llmErr
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: session.NewMemoryStore(30 * time.Minute),
		resolver: &fakeResolver{
			results: map[string][]places.Candidate{},
			details: map[string]places.ResolvedPlace{},
		},
		bookings: &fakeBookings{},
		llmReply: "أهلاً فيك!",
	}
	env.engine = NewEngine(Deps{
		Store:    env.store,
		Places:   env.resolver,
		Geo:      &fakeGeocoder{address: "شارع بغداد، دمشق، سوريا"},
		Routes:   &fakeRoutes{duration: 12 * time.Minute},
		Fares:    pricing.NewService(),
		Bookings: env.bookings,
		LLM:      envLLM{env: env},
	})
	env.engine.pick = func(int) int { return 0 }
	env.engine.now = func() time.Time {
		return time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	}
	return env
}

func ptr(v float64) *float64 { return &v }

func startedSession(t *testing.T, env *testEnv) string {
	t.Helper()
	resp, err := env.engine.HandleTurn(context.Background(), TurnRequest{
		Lat: ptr(33.50), Lng: ptr(36.27),
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return resp.SessionID
}

func turn(t *testing.T, env *testEnv, id, input string) TurnResponse {
	t.Helper()
	resp, err := env.engine.HandleTurn(context.Background(), TurnRequest{SessionID: id, UserInput: input})
	if err != nil {
		t.Fatalf("turn %q: %v", input, err)
	}
	return resp
}

func mustSession(t *testing.T, env *testEnv, id string) *session.Session {
	t.Helper()
	sess, err := env.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return sess
}

func TestStartSessionRequiresCoordinates(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.engine.HandleTurn(context.Background(), TurnRequest{UserInput: "مرحبا"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.SessionID != "" {
		t.Errorf("no session should be created without coordinates, got id %q", resp.SessionID)
	}
	if resp.BotMessage != msgNeedLocation {
		t.Errorf("got %q, want location prompt", resp.BotMessage)
	}
}

func TestStartSessionShortensOriginAddress(t *testing.T) {
	env := newTestEnv(t)
	id := startedSession(t, env)

	sess := mustSession(t, env, id)
	if sess.OriginText != "شارع بغداد، دمشق" {
		t.Errorf("origin text = %q, want shortened address", sess.OriginText)
	}
	if sess.State != session.StateAskDestination {
		t.Errorf("state = %q, want ask_destination", sess.State)
	}
}

func TestUnknownSessionIDStartsFresh(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.engine.HandleTurn(context.Background(), TurnRequest{
		SessionID: "gone", UserInput: "بدي مشوار", Lat: ptr(33.5), Lng: ptr(36.3),
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.SessionID == "" || resp.SessionID == "gone" {
		t.Errorf("expected a fresh session id, got %q", resp.SessionID)
	}
}

func TestHappyPathToConfirmedBooking(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["الشعلان"] = []places.Candidate{
		{DisplayText: "الشعلان، دمشق، سوريا", Ref: "p1"},
	}
	env.resolver.details["p1"] = places.ResolvedPlace{
		Address:  "الشعلان، دمشق، سوريا",
		Location: types.Point{Lat: 33.5138, Lng: 36.2765},
	}
	id := startedSession(t, env)

	resp := turn(t, env, id, "الشعلان")
	if !strings.Contains(resp.BotMessage, "تم اختيار الوجهة: الشعلان، دمشق") {
		t.Errorf("destination ack missing: %q", resp.BotMessage)
	}
	if got := mustSession(t, env, id).State; got != session.StateAskPickup {
		t.Fatalf("state = %q, want ask_pickup", got)
	}

	turn(t, env, id, "موقعي الحالي")
	sess := mustSession(t, env, id)
	if sess.State != session.StateAskTime {
		t.Fatalf("state = %q, want ask_time", sess.State)
	}
	if sess.Slots[SlotPickup] != "شارع بغداد، دمشق" {
		t.Errorf("pickup slot = %q, want origin text", sess.Slots[SlotPickup])
	}
	if sess.PickupLoc == nil || sess.PickupLoc.Lat != 33.50 {
		t.Error("pickup location should be the session origin")
	}

	turn(t, env, id, "الآن")
	turn(t, env, id, "عادية")
	resp = turn(t, env, id, "صمت")

	sess = mustSession(t, env, id)
	if sess.State != session.StateConfirmBooking {
		t.Fatalf("state = %q, want confirm_booking (reciter skipped)", sess.State)
	}
	for _, want := range []string{"ملخص طلبك", "📍 من: شارع بغداد، دمشق", "🎯 إلى: الشعلان، دمشق", "⏰ الوقت: الآن", "🚗 نوع السيارة: عادية", "المسافة التقريبية", "الكلفة التقديرية", "هل تؤكد الحجز؟"} {
		if !strings.Contains(resp.BotMessage, want) {
			t.Errorf("summary missing %q in:\n%s", want, resp.BotMessage)
		}
	}
	if strings.Contains(resp.BotMessage, "القارئ") {
		t.Error("summary should not mention a reciter when audio is silence")
	}

	resp = turn(t, env, id, "نعم")
	if !resp.Done {
		t.Error("confirmation should end the session")
	}
	if !strings.Contains(resp.BotMessage, "12345") {
		t.Errorf("confirmation should carry the booking code: %q", resp.BotMessage)
	}
	if len(env.bookings.created) != 1 {
		t.Fatalf("created %d bookings, want 1", len(env.bookings.created))
	}
	cmd := env.bookings.created[0]
	if cmd.Destination != "الشعلان، دمشق" || cmd.CarType != "عادية" || cmd.PickupTime != TimeNow {
		t.Errorf("unexpected create command: %+v", cmd)
	}
	if cmd.DistanceKm <= 0 {
		t.Errorf("distance should be positive, got %f", cmd.DistanceKm)
	}
	if _, err := env.store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Error("session should be deleted after confirmation")
	}
}

func TestCurrentLocationSkipsPlaceSearch(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["الجامعة"] = []places.Candidate{{DisplayText: "الجامعة", Ref: "u1"}}
	env.resolver.details["u1"] = places.ResolvedPlace{Address: "الجامعة، دمشق"}
	id := startedSession(t, env)
	turn(t, env, id, "الجامعة")

	before := len(env.resolver.calls)
	turn(t, env, id, "موقعي الحالي")
	if got := len(env.resolver.calls); got != before {
		t.Errorf("current-location shortcut must not query the provider, calls went %d -> %d", before, got)
	}
}

func TestDisambiguationByIndex(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["الجسر"] = []places.Candidate{
		{DisplayText: "الجسر الأبيض، دمشق، سوريا", Ref: "a"},
		{DisplayText: "جسر الرئيس، دمشق، سوريا", Ref: "b"},
		{DisplayText: "جسر فكتوريا، دمشق، سوريا", Ref: "c"},
	}
	env.resolver.details["b"] = places.ResolvedPlace{
		Address:  "جسر الرئيس، دمشق، سوريا",
		Location: types.Point{Lat: 33.51, Lng: 36.28},
	}
	id := startedSession(t, env)

	resp := turn(t, env, id, "الجسر")
	for _, want := range []string{"وجدت أكثر من مكان", "1. الجسر الأبيض، دمشق", "2. جسر الرئيس، دمشق", "3. جسر فكتوريا، دمشق"} {
		if !strings.Contains(resp.BotMessage, want) {
			t.Errorf("candidate list missing %q:\n%s", want, resp.BotMessage)
		}
	}
	if got := mustSession(t, env, id).State; got != session.StateChooseDestination {
		t.Fatalf("state = %q, want choose_destination", got)
	}

	resp = turn(t, env, id, "2")
	if !strings.Contains(resp.BotMessage, "تم اختيار الوجهة: جسر الرئيس، دمشق") {
		t.Errorf("index pick should resolve the second candidate: %q", resp.BotMessage)
	}
	sess := mustSession(t, env, id)
	if sess.State != session.StateAskPickup {
		t.Errorf("state = %q, want ask_pickup", sess.State)
	}
	if len(sess.PendingCandidates) != 0 {
		t.Error("pending candidates should be cleared after a pick")
	}
}

func TestOutOfRangeIndexKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["الجسر"] = []places.Candidate{
		{DisplayText: "أ", Ref: "a"},
		{DisplayText: "ب", Ref: "b"},
	}
	id := startedSession(t, env)
	turn(t, env, id, "الجسر")

	for _, input := range []string{"0", "7", "-1"} {
		resp := turn(t, env, id, input)
		sess := mustSession(t, env, id)
		if sess.State != session.StateChooseDestination {
			t.Errorf("input %q: state = %q, want choose_destination", input, sess.State)
		}
		if len(sess.PendingCandidates) != 2 {
			t.Errorf("input %q: pending candidates should survive", input)
		}
		if resp.BotMessage != msgChoiceNotFound {
			t.Errorf("input %q: got %q", input, resp.BotMessage)
		}
	}
}

func TestNonNumericChoiceRerunsSearch(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["الجسر"] = []places.Candidate{
		{DisplayText: "أ", Ref: "a"},
		{DisplayText: "ب", Ref: "b"},
	}
	env.resolver.results["ساحة الأمويين"] = []places.Candidate{
		{DisplayText: "ساحة الأمويين، دمشق، سوريا", Ref: "u"},
	}
	env.resolver.details["u"] = places.ResolvedPlace{
		Address:  "ساحة الأمويين، دمشق، سوريا",
		Location: types.Point{Lat: 33.51, Lng: 36.27},
	}
	id := startedSession(t, env)
	turn(t, env, id, "الجسر")

	resp := turn(t, env, id, "ساحة الأمويين")
	if !strings.Contains(resp.BotMessage, "تم اختيار الوجهة: ساحة الأمويين، دمشق") {
		t.Errorf("fresh query in choice state should resolve: %q", resp.BotMessage)
	}
	if got := mustSession(t, env, id).State; got != session.StateAskPickup {
		t.Errorf("state = %q, want ask_pickup", got)
	}
}

func TestNoCandidatesKeepsState(t *testing.T) {
	env := newTestEnv(t)
	id := startedSession(t, env)

	resp := turn(t, env, id, "مكان غير موجود نهائيا")
	if resp.BotMessage != msgDestinationNotFound {
		t.Errorf("got %q, want the not-found prompt", resp.BotMessage)
	}
	if got := mustSession(t, env, id).State; got != session.StateAskDestination {
		t.Errorf("state = %q, want ask_destination", got)
	}
}

func TestRecitationAsksForReciter(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["المزة"] = []places.Candidate{{DisplayText: "المزة، دمشق، سوريا", Ref: "m"}}
	env.resolver.details["m"] = places.ResolvedPlace{
		Address:  "المزة، دمشق، سوريا",
		Location: types.Point{Lat: 33.5024, Lng: 36.2213},
	}
	id := startedSession(t, env)
	turn(t, env, id, "المزة")
	turn(t, env, id, "موقعي الحالي")
	turn(t, env, id, "بعد 30 دقيقة")
	turn(t, env, id, "vip")

	turn(t, env, id, "قرآن")
	sess := mustSession(t, env, id)
	if sess.State != session.StateAskReciter {
		t.Fatalf("state = %q, want ask_reciter", sess.State)
	}

	resp := turn(t, env, id, "عبد الباسط")
	sess = mustSession(t, env, id)
	if sess.State != session.StateConfirmBooking {
		t.Fatalf("state = %q, want confirm_booking", sess.State)
	}
	if sess.Slots[SlotTime] != "14:30" {
		t.Errorf("time slot = %q, want 14:30", sess.Slots[SlotTime])
	}
	if sess.Slots[SlotCarType] != pricing.CarTypeVIP {
		t.Errorf("car type = %q, want VIP", sess.Slots[SlotCarType])
	}
	if !strings.Contains(resp.BotMessage, "القارئ: عبد الباسط") {
		t.Errorf("summary should list the reciter:\n%s", resp.BotMessage)
	}
}

func TestDeclineCancelsBooking(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["المزة"] = []places.Candidate{{DisplayText: "المزة", Ref: "m"}}
	env.resolver.details["m"] = places.ResolvedPlace{Address: "المزة، دمشق"}
	id := startedSession(t, env)
	turn(t, env, id, "المزة")
	turn(t, env, id, "موقعي الحالي")
	turn(t, env, id, "الآن")
	turn(t, env, id, "عادية")
	turn(t, env, id, "صمت")

	resp := turn(t, env, id, "لا")
	if !resp.Done || resp.BotMessage != msgCancelled {
		t.Errorf("decline should cancel and end: done=%v msg=%q", resp.Done, resp.BotMessage)
	}
	if len(env.bookings.created) != 0 {
		t.Error("no booking should be created on decline")
	}
	if _, err := env.store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Error("session should be deleted after cancellation")
	}
}

func TestResetCommandAbortsMidFlow(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["المزة"] = []places.Candidate{{DisplayText: "المزة", Ref: "m"}}
	env.resolver.details["m"] = places.ResolvedPlace{Address: "المزة، دمشق"}
	id := startedSession(t, env)
	turn(t, env, id, "المزة")

	resp := turn(t, env, id, "إلغاء الحجز")
	if !resp.Done || resp.BotMessage != msgReset {
		t.Errorf("reset should end the session: done=%v msg=%q", resp.Done, resp.BotMessage)
	}
	if _, err := env.store.Get(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Error("session should be deleted on reset")
	}
}

func TestChitChatDetourKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.llmReply = "أهلاً! أنا يا هو."
	id := startedSession(t, env)

	resp := turn(t, env, id, "مرحبا كيفك")
	if !strings.Contains(resp.BotMessage, "أهلاً! أنا يا هو.") {
		t.Errorf("chit-chat should carry the LLM reply: %q", resp.BotMessage)
	}
	if !strings.Contains(resp.BotMessage, "وين حابب تروح") {
		t.Errorf("chit-chat should re-ask the current step question: %q", resp.BotMessage)
	}
	if got := mustSession(t, env, id).State; got != session.StateAskDestination {
		t.Errorf("state = %q, chit-chat must not advance", got)
	}
}

func TestChitChatLLMFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.llmErr = errors.New("quota exceeded")
	id := startedSession(t, env)

	resp := turn(t, env, id, "مرحبا")
	if !strings.Contains(resp.BotMessage, msgLLMTrouble) {
		t.Errorf("LLM failure should degrade to the apology: %q", resp.BotMessage)
	}
	if got := mustSession(t, env, id).State; got != session.StateAskDestination {
		t.Errorf("state = %q, want ask_destination", got)
	}
}

func TestShortInputAtLocationStepIsChitChat(t *testing.T) {
	env := newTestEnv(t)
	id := startedSession(t, env)

	turn(t, env, id, "اي")
	if got := len(env.resolver.calls); got != 0 {
		t.Errorf("very short input should not hit the place provider, got %d calls", got)
	}
}

func TestBookingFailureKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["المزة"] = []places.Candidate{{DisplayText: "المزة", Ref: "m"}}
	env.resolver.details["m"] = places.ResolvedPlace{Address: "المزة، دمشق"}
	id := startedSession(t, env)
	turn(t, env, id, "المزة")
	turn(t, env, id, "موقعي الحالي")
	turn(t, env, id, "الآن")
	turn(t, env, id, "عادية")
	turn(t, env, id, "صمت")

	env.bookings.err = errors.New("db down")
	_, err := env.engine.HandleTurn(context.Background(), TurnRequest{SessionID: id, UserInput: "نعم"})
	if err == nil {
		t.Fatal("expected an error when the booking store fails")
	}
	sess := mustSession(t, env, id)
	if sess.State != session.StateConfirmBooking {
		t.Errorf("state = %q, session must stay confirmable for a retry", sess.State)
	}

	env.bookings.err = nil
	resp := turn(t, env, id, "نعم")
	if !resp.Done {
		t.Error("retry after a transient failure should confirm")
	}
}

func TestSlotWritesAreScopedToCurrentState(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.results["المزة"] = []places.Candidate{{DisplayText: "المزة", Ref: "m"}}
	env.resolver.details["m"] = places.ResolvedPlace{Address: "المزة، دمشق"}
	id := startedSession(t, env)
	turn(t, env, id, "المزة")
	turn(t, env, id, "موقعي الحالي")

	turn(t, env, id, "بكرا الصبح")
	sess := mustSession(t, env, id)
	if sess.Slots[SlotTime] != "بكرا الصبح" {
		t.Errorf("time slot = %q", sess.Slots[SlotTime])
	}
	if got := sess.Slots[SlotDestination]; got != "المزة، دمشق" {
		t.Errorf("destination slot changed to %q while filling time", got)
	}
	if got := sess.Slots[SlotCarType]; got != "" {
		t.Errorf("car type filled early: %q", got)
	}
}
