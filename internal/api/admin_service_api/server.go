package admin_service_api

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/sweeper"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
)

type BookingLister interface {
	ListAll(ctx context.Context) ([]domain.Booking, error)
}

type WaitlistLister interface {
	List(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error)
}

type Sweeper interface {
	SweepOnce(ctx context.Context) (sweeper.Result, error)
}

// Server implements AdminServiceServer on top of the trip, booking and
// waitlist services.
type Server struct {
	log      *slog.Logger
	trips    trips.AdminUseCase
	bookings BookingLister
	waitlist WaitlistLister
	sweeper  Sweeper
}

var _ AdminServiceServer = (*Server)(nil)

func NewServer(log *slog.Logger, trips trips.AdminUseCase, bookings BookingLister, waitlist WaitlistLister, sweeper Sweeper) *Server {
	return &Server{
		log:      log.With(slog.String("component", "admin_api")),
		trips:    trips,
		bookings: bookings,
		waitlist: waitlist,
		sweeper:  sweeper,
	}
}

func (s *Server) fail(method string, err error) error {
	st := toStatus(err)
	s.log.Warn("admin call failed", slog.String("method", method), sl.Err(err))
	return st
}

func reply(m map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(m)
}

func (s *Server) ListPackages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	q := trips.Query{
		Search:   f.String("search", false),
		Category: f.String("category", false),
		Sort:     repository.TripSort(f.String("sort", false)),
	}
	if f.err != nil {
		return nil, s.fail("ListPackages", f.err)
	}

	list, err := s.trips.ListAll(ctx, q)
	if err != nil {
		return nil, s.fail("ListPackages", err)
	}
	out := make([]any, 0, len(list))
	for i := range list {
		out = append(out, packageMap(&list[i]))
	}
	return reply(map[string]any{"packages": out})
}

func (s *Server) CreatePackage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	input := f.packageInput()
	if f.err != nil {
		return nil, s.fail("CreatePackage", f.err)
	}

	pkg, err := s.trips.Create(ctx, input)
	if err != nil {
		return nil, s.fail("CreatePackage", err)
	}
	return reply(map[string]any{"package": packageMap(pkg)})
}

func (s *Server) UpdatePackage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	id := f.Int64("id")
	input := f.packageInput()
	if f.err != nil {
		return nil, s.fail("UpdatePackage", f.err)
	}

	res, err := s.trips.Update(ctx, id, input)
	if err != nil {
		return nil, s.fail("UpdatePackage", err)
	}
	return reply(map[string]any{
		"package":  packageMap(&res.Package),
		"promoted": promotionsList(res.Promoted),
	})
}

func (s *Server) SetCapacity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	id := f.Int64("id")
	total := f.Int("total_rooms")
	if f.err != nil {
		return nil, s.fail("SetCapacity", f.err)
	}

	res, err := s.trips.SetCapacity(ctx, id, total)
	if err != nil {
		return nil, s.fail("SetCapacity", err)
	}
	return reply(map[string]any{
		"package":  packageMap(&res.Package),
		"promoted": promotionsList(res.Promoted),
	})
}

func (s *Server) SetVisibility(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	id := f.Int64("id")
	visible := f.Bool("is_visible")
	if f.err != nil {
		return nil, s.fail("SetVisibility", f.err)
	}

	pkg, err := s.trips.SetVisibility(ctx, id, visible)
	if err != nil {
		return nil, s.fail("SetVisibility", err)
	}
	return reply(map[string]any{"package": packageMap(pkg)})
}

func (s *Server) DeletePackage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	id := f.Int64("id")
	if f.err != nil {
		return nil, s.fail("DeletePackage", f.err)
	}

	if err := s.trips.Delete(ctx, id); err != nil {
		return nil, s.fail("DeletePackage", err)
	}
	return reply(map[string]any{"deleted": id})
}

func (s *Server) ListWaitlist(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(in)
	id := f.Int64("package_id")
	if f.err != nil {
		return nil, s.fail("ListWaitlist", f.err)
	}

	entries, err := s.waitlist.List(ctx, id)
	if err != nil {
		return nil, s.fail("ListWaitlist", err)
	}
	out := make([]any, 0, len(entries))
	for i, e := range entries {
		out = append(out, map[string]any{
			"id":         e.ID,
			"user_id":    e.UserID,
			"position":   i + 1,
			"created_at": e.CreatedAt.Format(time.RFC3339),
		})
	}
	return reply(map[string]any{"entries": out})
}

func (s *Server) ListBookings(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, s.fail("ListBookings", err)
	}
	out := make([]any, 0, len(list))
	for i := range list {
		out = append(out, bookingMap(&list[i]))
	}
	return reply(map[string]any{"bookings": out})
}

func (s *Server) TriggerSweep(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.sweeper.SweepOnce(ctx)
	if err != nil {
		return nil, s.fail("TriggerSweep", err)
	}
	s.log.Info("manual sweep", slog.Int("expired", res.Expired), slog.Int("failed", res.Failed))
	return reply(map[string]any{
		"expired": res.Expired,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	})
}
