package tour

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"trekora_back_end/internal/apperr"
	"trekora_back_end/internal/cache"
	"trekora_back_end/internal/database"
	"trekora_back_end/internal/models"
	"trekora_back_end/internal/services"
	"trekora_back_end/internal/store"
	"trekora_back_end/internal/utils"
)

const listCacheKey = "tours:all"

var tours = store.NewTourStore()

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify : "The Forest Hiker" → "the-forest-hiker"
func slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.ClientMessage(err)})
}

func CreateTour(c *gin.Context) {
	var input struct {
		Name          string   `json:"name" binding:"required"`
		Summary       string   `json:"summary" binding:"required"`
		Description   string   `json:"description"`
		Difficulty    string   `json:"difficulty" binding:"required,oneof=easy medium difficult"`
		Price         float64  `json:"price" binding:"required,gt=0"`
		PriceDiscount float64  `json:"price_discount"`
		DurationDays  int      `json:"duration_days" binding:"required,gt=0"`
		MaxGroupSize  int      `json:"max_group_size" binding:"required,gt=0"`
		StartDates    []string `json:"start_dates" binding:"required,min=1"`
		Guides        []string `json:"guides"`
		ImageCover    string   `json:"image_cover"`
		Images        []string `json:"images"`
		SecretTour    bool     `json:"secret_tour"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.PriceDiscount > 0 && input.PriceDiscount >= input.Price {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La remise doit être inférieure au prix"})
		return
	}

	startDates, err := parseStartDates(input.StartDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide, attendu RFC3339 ou YYYY-MM-DD"})
		return
	}

	now := time.Now().UTC()
	t := models.Tour{
		ID:            gocql.TimeUUID(),
		Name:          input.Name,
		Slug:          slugify(input.Name),
		Summary:       input.Summary,
		Description:   input.Description,
		Difficulty:    input.Difficulty,
		Price:         input.Price,
		PriceDiscount: input.PriceDiscount,
		DurationDays:  input.DurationDays,
		MaxGroupSize:  input.MaxGroupSize,
		// Un tour sans avis part sur les valeurs par défaut, l'agrégateur
		// prendra la main dès le premier avis.
		RatingsAverage:  models.DefaultRatingsAverage,
		RatingsQuantity: models.DefaultRatingsQuantity,
		StartDates:      startDates,
		Guides:          input.Guides,
		ImageCover:      input.ImageCover,
		Images:          input.Images,
		SecretTour:      input.SecretTour,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := tours.Insert(c.Request.Context(), &t); err != nil {
		utils.LogFailedAction(c, utils.ACTION_TOUR_CREATE, utils.RESOURCE_TOUR, "", err.Error())
		respondError(c, err)
		return
	}

	invalidateListCache()
	// 🔄 Indexation Elasticsearch
	go services.IndexTour(t)
	utils.LogAction(c, utils.ACTION_TOUR_CREATE, utils.RESOURCE_TOUR, t.ID.String(), nil, t)

	c.JSON(http.StatusCreated, t)
}

func GetAllTours(c *gin.Context) {
	ctx := context.Background()

	// ✅ Vérifie le cache Redis
	if val, err := database.Redis.Get(ctx, listCacheKey).Result(); err == nil && val != "" {
		var cached []models.Tour
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	all, err := tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if data, err := json.Marshal(all); err == nil {
		database.Redis.Set(ctx, listCacheKey, data, 10*time.Minute)
	}

	c.JSON(http.StatusOK, all)
}

// GetTopTours : alias "top 5" pré-filtré, les mieux notés d'abord.
func GetTopTours(c *gin.Context) {
	all, err := tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].RatingsAverage != all[j].RatingsAverage {
			return all[i].RatingsAverage > all[j].RatingsAverage
		}
		return all[i].Price < all[j].Price
	})
	if len(all) > 5 {
		all = all[:5]
	}

	c.JSON(http.StatusOK, all)
}

func GetTourByID(c *gin.Context) {
	t, err := tours.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func UpdateTour(c *gin.Context) {
	tourID := c.Param("id")

	existing, err := tours.GetByID(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Name          *string  `json:"name"`
		Summary       *string  `json:"summary"`
		Description   *string  `json:"description"`
		Difficulty    *string  `json:"difficulty"`
		Price         *float64 `json:"price"`
		PriceDiscount *float64 `json:"price_discount"`
		DurationDays  *int     `json:"duration_days"`
		MaxGroupSize  *int     `json:"max_group_size"`
		StartDates    []string `json:"start_dates"`
		Guides        []string `json:"guides"`
		ImageCover    *string  `json:"image_cover"`
		Images        []string `json:"images"`
		SecretTour    *bool    `json:"secret_tour"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := existing

	if input.Name != nil {
		existing.Name = *input.Name
		existing.Slug = slugify(*input.Name)
	}
	if input.Summary != nil {
		existing.Summary = *input.Summary
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Difficulty != nil {
		switch *input.Difficulty {
		case "easy", "medium", "difficult":
			existing.Difficulty = *input.Difficulty
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Difficulté invalide (easy, medium, difficult)"})
			return
		}
	}
	if input.Price != nil {
		existing.Price = *input.Price
	}
	if input.PriceDiscount != nil {
		existing.PriceDiscount = *input.PriceDiscount
	}
	if input.DurationDays != nil {
		existing.DurationDays = *input.DurationDays
	}
	if input.MaxGroupSize != nil {
		existing.MaxGroupSize = *input.MaxGroupSize
	}
	if input.StartDates != nil {
		startDates, err := parseStartDates(input.StartDates)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide, attendu RFC3339 ou YYYY-MM-DD"})
			return
		}
		existing.StartDates = startDates
	}
	if input.Guides != nil {
		existing.Guides = input.Guides
	}
	if input.ImageCover != nil {
		existing.ImageCover = *input.ImageCover
	}
	if input.Images != nil {
		existing.Images = input.Images
	}
	if input.SecretTour != nil {
		existing.SecretTour = *input.SecretTour
	}

	if err := tours.Update(c.Request.Context(), &existing); err != nil {
		utils.LogFailedAction(c, utils.ACTION_TOUR_UPDATE, utils.RESOURCE_TOUR, tourID, err.Error())
		respondError(c, err)
		return
	}

	invalidateListCache()
	cache.InvalidateTourCache(tourID)
	go services.IndexTour(existing)
	utils.LogAction(c, utils.ACTION_TOUR_UPDATE, utils.RESOURCE_TOUR, tourID, old, existing)

	c.JSON(http.StatusOK, existing)
}

func DeleteTour(c *gin.Context) {
	tourID := c.Param("id")

	old, err := tours.GetByID(c.Request.Context(), tourID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := tours.Delete(c.Request.Context(), tourID); err != nil {
		utils.LogFailedAction(c, utils.ACTION_TOUR_DELETE, utils.RESOURCE_TOUR, tourID, err.Error())
		respondError(c, err)
		return
	}

	invalidateListCache()
	cache.InvalidateTourCache(tourID)
	go services.RemoveTourFromIndex(tourID)
	utils.LogAction(c, utils.ACTION_TOUR_DELETE, utils.RESOURCE_TOUR, tourID, old, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Tour supprimé"})
}

// GetTourStats agrège les tours par difficulté. L'agrégation se fait côté
// application, pas de GROUP BY multi-partitions en CQL.
func GetTourStats(c *gin.Context) {
	all, err := tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	type stat struct {
		Difficulty string  `json:"difficulty"`
		NumTours   int     `json:"num_tours"`
		NumRatings int     `json:"num_ratings"`
		AvgRating  float64 `json:"avg_rating"`
		AvgPrice   float64 `json:"avg_price"`
		MinPrice   float64 `json:"min_price"`
		MaxPrice   float64 `json:"max_price"`
	}

	byDifficulty := map[string]*stat{}
	for _, t := range all {
		s, ok := byDifficulty[t.Difficulty]
		if !ok {
			s = &stat{Difficulty: t.Difficulty, MinPrice: t.Price, MaxPrice: t.Price}
			byDifficulty[t.Difficulty] = s
		}
		s.NumTours++
		s.NumRatings += t.RatingsQuantity
		s.AvgRating += t.RatingsAverage
		s.AvgPrice += t.Price
		if t.Price < s.MinPrice {
			s.MinPrice = t.Price
		}
		if t.Price > s.MaxPrice {
			s.MaxPrice = t.Price
		}
	}

	stats := make([]stat, 0, len(byDifficulty))
	for _, s := range byDifficulty {
		s.AvgRating = s.AvgRating / float64(s.NumTours)
		s.AvgPrice = s.AvgPrice / float64(s.NumTours)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].AvgPrice < stats[j].AvgPrice })

	c.JSON(http.StatusOK, stats)
}

// GetMonthlyPlan compte les départs planifiés par mois pour une année donnée.
func GetMonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Année invalide"})
		return
	}

	all, err := tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	type monthPlan struct {
		Month     int      `json:"month"`
		NumStarts int      `json:"num_starts"`
		Tours     []string `json:"tours"`
	}

	byMonth := map[int]*monthPlan{}
	for _, t := range all {
		for _, d := range t.StartDates {
			d = d.UTC()
			if d.Year() != year {
				continue
			}
			m := int(d.Month())
			p, ok := byMonth[m]
			if !ok {
				p = &monthPlan{Month: m}
				byMonth[m] = p
			}
			p.NumStarts++
			p.Tours = append(p.Tours, t.Name)
		}
	}

	plan := make([]monthPlan, 0, len(byMonth))
	for _, p := range byMonth {
		plan = append(plan, *p)
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].NumStarts > plan[j].NumStarts })

	c.JSON(http.StatusOK, gin.H{"year": year, "plan": plan})
}

func invalidateListCache() {
	database.Redis.Del(context.Background(), listCacheKey)
}

// parseStartDates accepte RFC3339 ou un jour calendaire nu.
func parseStartDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(time.RFC3339, s)
		if err != nil {
			d, err = time.Parse("2006-01-02", s)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, d.UTC())
	}
	return out, nil
}

