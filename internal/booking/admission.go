// Package booking porte la décision d'admission d'une réservation et la
// réconciliation des paiements confirmés. L'admission ne réserve jamais de
// place de façon optimiste : la capacité est revérifiée au moment de la
// confirmation, car le délai entre la création de la session de paiement et
// le paiement effectif n'est pas borné.
package booking

import (
	"context"
	"time"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/capacity"
	"trekora_back_end/internal/models"
)

// RejectReason : motif de refus d'une demande de réservation.
type RejectReason string

const (
	ReasonAlreadyBooked RejectReason = "already_booked"
	ReasonFull          RejectReason = "full"
)

// TourInfo : la vue d'un tour dont l'admission et le checkout ont besoin.
type TourInfo struct {
	ID           string
	Name         string
	Summary      string
	Price        float64
	MaxGroupSize int
	StartDays    []string // jours calendaires UTC (YYYY-MM-DD)
	ImageCover   string
}

// HasStartDay vérifie que le jour demandé est un départ planifié du tour.
func (t TourInfo) HasStartDay(day string) bool {
	for _, d := range t.StartDays {
		if d == day {
			return true
		}
	}
	return false
}

// TourSource résout un tour par identifiant.
type TourSource interface {
	TourForBooking(ctx context.Context, tourID string) (TourInfo, error)
}

// UserSource résout un utilisateur par identifiant ou par e-mail.
type UserSource interface {
	UserByID(ctx context.Context, userID string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

// BookingLookup : requêtes d'existence sur les réservations.
type BookingLookup interface {
	// HasBookingForTour indique si l'utilisateur détient déjà une réservation
	// pour ce tour, quelle que soit la date de départ.
	HasBookingForTour(ctx context.Context, userID, tourID string) (bool, error)
}

// Decision : résultat de la machine à états Requested → Rejected | Admitted.
type Decision struct {
	Admitted  bool
	Reason    RejectReason
	Available int
	Tour      TourInfo
}

type AdmissionController struct {
	tours    TourSource
	users    UserSource
	bookings BookingLookup
	ledger   *capacity.Ledger
}

func NewAdmissionController(tours TourSource, users UserSource, bookings BookingLookup, ledger *capacity.Ledger) *AdmissionController {
	return &AdmissionController{tours: tours, users: users, bookings: bookings, ledger: ledger}
}

// Check décide si la demande peut partir vers la création de session de
// paiement. Ordre des transitions :
//  1. l'utilisateur détient déjà une réservation pour ce tour (toute date
//     confondue) → AlreadyBooked. Granularité volontairement conservée telle
//     quelle, voir DESIGN.md.
//  2. plus de place sur ce départ → Full.
//  3. sinon → Admitted, aucune place n'est retenue à ce stade.
func (a *AdmissionController) Check(ctx context.Context, tourID string, startDate time.Time, userID string) (Decision, error) {
	tour, err := a.tours.TourForBooking(ctx, tourID)
	if err != nil {
		return Decision{}, err
	}

	day := capacity.DayKey(startDate)
	if !tour.HasStartDay(day) {
		return Decision{}, apperr.New(apperr.Validation, "this tour has no departure on the requested date")
	}

	already, err := a.bookings.HasBookingForTour(ctx, userID, tourID)
	if err != nil {
		return Decision{}, err
	}
	if already {
		return Decision{Reason: ReasonAlreadyBooked, Tour: tour}, nil
	}

	available, err := a.ledger.Available(ctx, tourID, startDate, tour.MaxGroupSize)
	if err != nil {
		return Decision{}, err
	}
	if available <= 0 {
		return Decision{Reason: ReasonFull, Tour: tour}, nil
	}

	return Decision{Admitted: true, Available: available, Tour: tour}, nil
}

// ValidateReferences : chemin de création directe par un admin, sans
// paiement. Le tour et l'utilisateur doivent exister.
func (a *AdmissionController) ValidateReferences(ctx context.Context, tourID, userID string) (TourInfo, models.User, error) {
	tour, err := a.tours.TourForBooking(ctx, tourID)
	if err != nil {
		return TourInfo{}, models.User{}, apperr.Wrap(apperr.Validation, "bad request, not allowed to perform this action", err)
	}
	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		return TourInfo{}, models.User{}, apperr.Wrap(apperr.Validation, "bad request, not allowed to perform this action", err)
	}
	return tour, user, nil
}
