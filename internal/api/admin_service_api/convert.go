package admin_service_api

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

const dateLayout = time.DateOnly

var errInvalidArgument = fmt.Errorf("%w: invalid argument", domain.ErrValidation)

// fields reads typed values out of a request struct. The first problem is
// kept in err and later reads become no-ops.
type fields struct {
	m   map[string]*structpb.Value
	err error
}

func readFields(s *structpb.Struct) *fields {
	return &fields{m: s.GetFields()}
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: "+format, append([]any{errInvalidArgument}, args...)...)
	}
}

func (f *fields) has(name string) bool {
	v, ok := f.m[name]
	if !ok {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (f *fields) number(name string, required bool) (float64, bool) {
	if !f.has(name) {
		if required {
			f.fail("field %s is required", name)
		}
		return 0, false
	}
	n, ok := f.m[name].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		f.fail("field %s must be a number", name)
		return 0, false
	}
	return n.NumberValue, true
}

// integer reads a whole number; fractions fail instead of being truncated.
func (f *fields) integer(name string, required bool) (int64, bool) {
	n, ok := f.number(name, required)
	if !ok {
		return 0, false
	}
	if n != math.Trunc(n) {
		f.fail("field %s must be an integer", name)
		return 0, false
	}
	return int64(n), true
}

func (f *fields) Int64(name string) int64 {
	n, _ := f.integer(name, true)
	return n
}

func (f *fields) OptInt64(name string) *int64 {
	n, ok := f.integer(name, false)
	if !ok {
		return nil
	}
	return &n
}

func (f *fields) Int(name string) int {
	return int(f.Int64(name))
}

func (f *fields) OptInt(name string) *int {
	n, ok := f.integer(name, false)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

func (f *fields) String(name string, required bool) string {
	if !f.has(name) {
		if required {
			f.fail("field %s is required", name)
		}
		return ""
	}
	s, ok := f.m[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		f.fail("field %s must be a string", name)
		return ""
	}
	if required && s.StringValue == "" {
		f.fail("field %s is required", name)
	}
	return s.StringValue
}

func (f *fields) Bool(name string) bool {
	if !f.has(name) {
		return false
	}
	b, ok := f.m[name].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		f.fail("field %s must be a boolean", name)
		return false
	}
	return b.BoolValue
}

func (f *fields) Date(name string) time.Time {
	raw := f.String(name, true)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		f.fail("field %s must be a date (YYYY-MM-DD)", name)
	}
	return t
}

func (f *fields) OptDate(name string) *time.Time {
	if !f.has(name) {
		return nil
	}
	t := f.Date(name)
	return &t
}

func (f *fields) packageInput() trips.PackageInput {
	return trips.PackageInput{
		Name:                 f.String("name", true),
		Destination:          f.String("destination", true),
		Country:              f.String("country", false),
		PackageType:          f.String("package_type", false),
		Description:          f.String("description", false),
		StartDate:            f.Date("start_date"),
		EndDate:              f.Date("end_date"),
		BookingDeadline:      f.OptDate("booking_deadline"),
		BasePriceCents:       f.Int64("base_price_cents"),
		DiscountedPriceCents: f.OptInt64("discounted_price_cents"),
		DiscountEndDate:      f.OptDate("discount_end_date"),
		TotalRooms:           f.Int("total_rooms"),
		AgeLimit:             f.OptInt("age_limit"),
		IsVisible:            f.Bool("is_visible"),
	}
}

func packageMap(p *domain.TravelPackage) map[string]any {
	m := map[string]any{
		"id":               p.ID,
		"name":             p.Name,
		"destination":      p.Destination,
		"country":          p.Country,
		"package_type":     p.PackageType,
		"description":      p.Description,
		"start_date":       p.StartDate.Format(dateLayout),
		"end_date":         p.EndDate.Format(dateLayout),
		"base_price_cents": p.BasePriceCents,
		"total_rooms":      p.TotalRooms,
		"available_rooms":  p.AvailableRooms,
		"is_visible":       p.IsVisible,
	}
	if p.BookingDeadline != nil {
		m["booking_deadline"] = p.BookingDeadline.Format(dateLayout)
	}
	if p.DiscountedPriceCents != nil {
		m["discounted_price_cents"] = *p.DiscountedPriceCents
	}
	if p.DiscountEndDate != nil {
		m["discount_end_date"] = p.DiscountEndDate.Format(dateLayout)
	}
	if p.AgeLimit != nil {
		m["age_limit"] = *p.AgeLimit
	}
	return m
}

func bookingMap(b *domain.Booking) map[string]any {
	m := map[string]any{
		"id":                         b.ID,
		"user_id":                    b.UserID,
		"package_id":                 b.PackageID,
		"status":                     string(b.Status),
		"total_price_cents":          b.TotalPriceCents,
		"booking_date":               b.BookingDate.Format(time.RFC3339),
		"departure_date":             b.DepartureDate.Format(dateLayout),
		"cancellation_allowed_until": b.CancellationAllowedUntil.Format(dateLayout),
	}
	if b.PaymentID != nil {
		m["payment_id"] = *b.PaymentID
	}
	return m
}

func promotionsList(promoted []waitlist.Promotion) []any {
	out := make([]any, 0, len(promoted))
	for _, p := range promoted {
		out = append(out, map[string]any{
			"user_id":    p.Entry.UserID,
			"booking_id": p.Booking.ID,
		})
	}
	return out
}
