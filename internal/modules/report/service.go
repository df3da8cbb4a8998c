package report

import (
	"context"
	"fmt"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"

	"github.com/shopspring/decimal"
)

var occupancyStatuses = []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted}

type Service struct {
	payments PaymentRepository
	rooms    RoomRepository
	bookings BookingRepository
	rates    RateSource
}

func NewService(payments PaymentRepository, rooms RoomRepository, bookings BookingRepository, rates RateSource) *Service {
	return &Service{payments: payments, rooms: rooms, bookings: bookings, rates: rates}
}

func (s *Service) Cash(ctx context.Context, from, to time.Time) (*CashReport, error) {
	if !to.After(from) {
		return nil, ErrInvalidPeriod
	}
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exchange rate: %w", err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("exchange rate %v is not usable", rate)
	}
	payments, err := s.payments.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	usd, cdf, recorded := decimal.Zero, decimal.Zero, decimal.Zero
	type acc struct {
		count    int
		usd, cdf decimal.Decimal
	}
	methods := map[domain.PaymentMethod]*acc{}
	for _, p := range payments {
		u, c := decimal.NewFromFloat(p.UsdAmount), decimal.NewFromFloat(p.CdfAmount)
		usd = usd.Add(u)
		cdf = cdf.Add(c)
		recorded = recorded.Add(decimal.NewFromFloat(p.UsdEquivalent))

		m, ok := methods[p.Method]
		if !ok {
			m = &acc{}
			methods[p.Method] = m
		}
		m.count++
		m.usd = m.usd.Add(u)
		m.cdf = m.cdf.Add(c)
	}

	rep := &CashReport{
		From:                  from,
		To:                    to,
		Count:                 len(payments),
		USD:                   usd.Round(2).InexactFloat64(),
		CDF:                   cdf.Round(2).InexactFloat64(),
		Rate:                  rate,
		UsdEquivalent:         usd.Add(cdf.Div(decimal.NewFromFloat(rate))).Round(2).InexactFloat64(),
		RecordedUsdEquivalent: recorded.Round(2).InexactFloat64(),
		ByMethod:              make(map[domain.PaymentMethod]MethodTotals, len(methods)),
	}
	for method, m := range methods {
		rep.ByMethod[method] = MethodTotals{
			Count: m.count,
			USD:   m.usd.Round(2).InexactFloat64(),
			CDF:   m.cdf.Round(2).InexactFloat64(),
		}
	}
	return rep, nil
}

// Occupancy counts rooms by effective status at the instant at.
func (s *Service) Occupancy(ctx context.Context, at time.Time) (*OccupancyReport, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByStatus(ctx, occupancyStatuses...)
	if err != nil {
		return nil, err
	}

	counts := occupancy.Summary(occupancy.Board(rooms, bookings, at))
	rep := &OccupancyReport{At: at, Rooms: len(rooms), Counts: counts}
	if len(rooms) > 0 {
		occupied := counts[occupancy.Occupied] + counts[occupancy.PendingCheckout]
		rep.OccupancyRate = decimal.NewFromInt(int64(occupied)).
			Div(decimal.NewFromInt(int64(len(rooms)))).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			InexactFloat64()
	}
	return rep, nil
}
