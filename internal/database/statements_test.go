package database_test

import (
	"strings"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"

	"trekora_back_end/internal/database"
)

// TestBindEcraseLesValeursEnPlace : Bind écrase les valeurs en place et rend
// le même pointeur. Un *gocql.Query partagé entre appelants verrait donc ses
// arguments remplacés par l'appel suivant : les chemins chauds construisent
// une Query neuve par appel à partir des constantes CQL.
func TestBindEcraseLesValeursEnPlace(t *testing.T) {
	q := new(gocql.Query)

	premier := q.Bind("tour-a", "2025-07-15")
	second := q.Bind("tour-b", "2025-08-01")

	require.Same(t, premier, second)
	require.Same(t, q, second)
}

// TestStatements_nombreDeParametres : chaque constante CQL porte autant de
// placeholders que ses appelants passent d'arguments.
func TestStatements_nombreDeParametres(t *testing.T) {
	cas := map[string]struct {
		cql    string
		params int
	}{
		"occupation":  {database.StmtCountSlot, 2},
		"emailVersID": {database.StmtUserByEmail, 1},
		"audit":       {database.StmtInsertAuditEvent, 14},
	}

	for nom, c := range cas {
		require.Equal(t, c.params, strings.Count(c.cql, "?"), nom)
	}
}
