package cache

import (
	"context"
	"encoding/json"
	"time"

	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/store"
)

const (
	UserCacheTTL = 5 * time.Minute
	TourCacheTTL = 10 * time.Minute
)

// GetUserFromCache récupère un utilisateur depuis Redis ou ScyllaDB
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	user, err := store.NewUserStore().UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return &user, nil
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}

// GetTourNamesFromCache récupère plusieurs noms de tours, utilisé pour
// enrichir les listes de réservations sans requête par ligne.
func GetTourNamesFromCache(tourIDs []string) map[string]string {
	ctx := context.Background()
	result := make(map[string]string)
	missingIDs := []string{}

	// 1. Essayer de récupérer depuis Redis
	for _, tourID := range tourIDs {
		key := "tour_name:" + tourID
		name, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			result[tourID] = name
		} else {
			missingIDs = append(missingIDs, tourID)
		}
	}

	// 2. Récupérer les tours manquants depuis ScyllaDB
	if len(missingIDs) > 0 {
		tours := store.NewTourStore()
		for _, tourID := range missingIDs {
			t, err := tours.GetByID(ctx, tourID)
			if err == nil {
				result[tourID] = t.Name
				// Mettre en cache
				database.Redis.Set(ctx, "tour_name:"+tourID, t.Name, TourCacheTTL)
			}
		}
	}

	return result
}

// InvalidateTourCache invalide le cache d'un tour
func InvalidateTourCache(tourID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "tour:"+tourID, "tour_name:"+tourID)
}
