// README: Booking service assigns display codes and appends confirmed trips.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"
	"time"

	"yahu/internal/types"
)

type Service struct {
	store *Store
	// seq drives the short display code: a time-seeded counter, so codes
	// stay distinct across restarts without a central allocator.
	seq uint64
}

func NewService(store *Store) *Service {
	return &Service{store: store, seq: uint64(time.Now().UnixNano())}
}

type CreateCommand struct {
	Pickup        string
	Destination   string
	PickupTime    string
	CarType       string
	AudioPref     string
	Reciter       string
	DistanceKm    float64
	EstimatedFare types.Money
}

// Create appends a confirmed booking to the log and returns it with its
// assigned id and display code.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	b := &Booking{
		ID:            newID(),
		Code:          s.nextCode(),
		Pickup:        cmd.Pickup,
		Destination:   cmd.Destination,
		PickupTime:    cmd.PickupTime,
		CarType:       cmd.CarType,
		AudioPref:     cmd.AudioPref,
		Reciter:       cmd.Reciter,
		DistanceKm:    cmd.DistanceKm,
		EstimatedFare: cmd.EstimatedFare,
		CreatedAt:     time.Now(),
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.List(ctx, limit)
}

// nextCode returns a 5-digit display code.
func (s *Service) nextCode() int {
	n := atomic.AddUint64(&s.seq, 1)
	return 10000 + int(n%90000)
}

func newID() types.ID {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return types.ID(hex.EncodeToString(buf))
}
