package booking

import "trekora_back_end/internal/models"

// ReviewEligible dit si l'utilisateur peut noter le tour : au moins une
// réservation confirmée sur ce tour dont le jour de départ est strictement
// passé. Un départ le jour même ne compte pas, le tour n'a pas encore eu lieu.
// Les jours sont au format calendaire UTC "2006-01-02", comparables en texte.
func ReviewEligible(bookings []models.Booking, tourID, today string) bool {
	for _, b := range bookings {
		if b.TourID.String() == tourID && b.StartDay < today {
			return true
		}
	}
	return false
}
