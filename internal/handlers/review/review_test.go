package review

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/apperr"
)

func bindReview(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req createReviewRequest
	return c.ShouldBindJSON(&req)
}

// TestCreateReviewRequest_validation : note bornée 1..5, texte d'au moins
// 8 caractères.
func TestCreateReviewRequest_validation(t *testing.T) {
	require.NoError(t, bindReview(t, `{"rating":4.5,"body":"Superbe randonnée"}`))

	require.Error(t, bindReview(t, `{"rating":4.5,"body":"court"}`), "texte trop court")
	require.Error(t, bindReview(t, `{"rating":4.5}`), "texte manquant")
	require.Error(t, bindReview(t, `{"rating":6,"body":"Superbe randonnée"}`), "note hors bornes")
	require.Error(t, bindReview(t, `{"body":"Superbe randonnée"}`), "note manquante")
}

// TestAvisSansReservation_conflit : noter un tour jamais réservé est un
// conflit d'état (409), pas un refus d'autorisation (403).
func TestAvisSansReservation_conflit(t *testing.T) {
	err := apperr.New(apperr.Conflict, "you have not booked this tour")
	require.Equal(t, http.StatusConflict, apperr.HTTPStatus(err))
	require.Equal(t, "you have not booked this tour", apperr.ClientMessage(err))
}
