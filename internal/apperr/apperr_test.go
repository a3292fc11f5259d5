package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Validation, http.StatusBadRequest},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Conflict, http.StatusConflict},
		{apperr.Authentication, http.StatusUnauthorized},
		{apperr.Authorization, http.StatusForbidden},
		{apperr.Upstream, http.StatusBadGateway},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, apperr.HTTPStatus(apperr.New(c.kind, "x")))
	}
}

// TestHTTPStatus_erreurInconnue : une erreur hors taxonomie est traitée comme
// interne.
func TestHTTPStatus_erreurInconnue(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(errors.New("boom")))
}

// TestClientMessage : les erreurs internes ne divulguent jamais leur détail.
func TestClientMessage(t *testing.T) {
	require.Equal(t, "tour not found", apperr.ClientMessage(apperr.New(apperr.NotFound, "tour not found")))
	require.Equal(t, "something went wrong", apperr.ClientMessage(errors.New("dial tcp: connection refused")))
	require.Equal(t, "something went wrong", apperr.ClientMessage(apperr.New(apperr.Internal, "scylla timeout on bookings")))
}

// TestWrap : la cause reste accessible par errors.Is à travers l'enveloppe.
func TestWrap(t *testing.T) {
	cause := errors.New("cause initiale")
	wrapped := apperr.Wrap(apperr.Conflict, "departure sold out", cause)

	require.True(t, errors.Is(wrapped, cause))
	require.True(t, errors.Is(fmt.Errorf("contexte: %w", wrapped), cause))
	require.Equal(t, apperr.Conflict, apperr.KindOf(wrapped))
}
