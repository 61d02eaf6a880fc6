package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// BookingRequest is the room booking form.
type BookingRequest struct {
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Mobile          string    `json:"mobile"`
	Email           string    `json:"email"`
	RoomType        string    `json:"roomType"`
	Rooms           int       `json:"rooms"`
	Guests          int       `json:"guests"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	SpecialRequests string    `json:"specialRequests"`
	ConsentStorage  bool      `json:"consentStorage"`
}

type BookingService struct {
	store DocumentStore
	log   *logger.Logger
	now   func() time.Time
}

func NewBookingService(store DocumentStore, log *logger.Logger) *BookingService {
	return &BookingService{store: store, log: log, now: time.Now}
}

// Create validates the form and stores a pending booking with a reference
// number of the form RB + the last 8 digits of the millisecond clock.
func (b *BookingService) Create(ctx context.Context, req BookingRequest) (domain.RoomBooking, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Mobile) == "" {
		return domain.RoomBooking{}, fmt.Errorf("%w: please fill in all required fields", domain.ErrValidation)
	}
	phone, err := domain.NormalizePhone(req.Mobile)
	if err != nil {
		return domain.RoomBooking{}, err
	}
	if !req.ConsentStorage {
		return domain.RoomBooking{}, fmt.Errorf("%w: please consent to data storage", domain.ErrValidation)
	}
	if req.Rooms <= 0 {
		req.Rooms = 1
	}
	if req.Guests <= 0 {
		req.Guests = 1
	}
	now := b.now().UTC()
	if req.CheckIn.IsZero() {
		req.CheckIn = now
	}
	if req.CheckOut.IsZero() {
		req.CheckOut = req.CheckIn.Add(24 * time.Hour)
	}
	if !req.CheckOut.After(req.CheckIn) {
		return domain.RoomBooking{}, fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
	}

	booking := domain.RoomBooking{
		ID:              uuid.NewString(),
		Reference:       bookingReference(now),
		UserID:          req.UserID,
		UserName:        strings.TrimSpace(req.Name),
		PhoneNumber:     phone,
		Email:           strings.TrimSpace(req.Email),
		RoomType:        req.RoomType,
		Rooms:           req.Rooms,
		Guests:          req.Guests,
		CheckIn:         req.CheckIn.UTC(),
		CheckOut:        req.CheckOut.UTC(),
		SpecialRequests: req.SpecialRequests,
		Status:          domain.BookingPending,
		CreatedAt:       now,
	}
	if err := b.store.Upsert(ctx, domain.CollectionRoomBookings, booking.ID, booking); err != nil {
		return domain.RoomBooking{}, fmt.Errorf("save booking: %w", err)
	}
	b.log.Info("room booking created", "bookingId", booking.ID, "reference", booking.Reference)
	return booking, nil
}

// UserBookings lists a user's bookings, newest first.
func (b *BookingService) UserBookings(ctx context.Context, userID string) ([]domain.RoomBooking, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	var bookings []domain.RoomBooking
	err := b.store.Find(ctx, domain.CollectionRoomBookings, Query{
		Filters:    []Filter{Eq("userId", userID)},
		OrderBy:    "createdAt",
		Descending: true,
	}, &bookings)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	if bookings == nil {
		bookings = []domain.RoomBooking{}
	}
	return bookings, nil
}

func bookingReference(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "RB" + ms
}
