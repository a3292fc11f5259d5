package database

// CQL des chemins chauds, centralisé pour garder les requêtes alignées avec
// le schéma (scripts/scylladb_init.cql). Chaque appelant construit sa propre
// *gocql.Query via session.Query : un *gocql.Query est mutable (Bind écrase
// les valeurs en place) et ne doit JAMAIS être partagé entre requêtes. Le
// driver prépare et met en cache les statements par texte de requête, il n'y
// a rien à pré-préparer côté application.
const (
	// Occupation d'un départ : compte des réservations du couple (tour, jour)
	StmtCountSlot = "SELECT COUNT(*) FROM bookings_by_slot WHERE tour_id = ? AND start_day = ?"

	// Résolution d'un utilisateur par e-mail (login + webhook de paiement)
	StmtUserByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"

	// Journal d'audit
	StmtInsertAuditEvent = `INSERT INTO audit_logs (id, user_id, user_email, action, resource, resource_id,
		old_value, new_value, ip_address, user_agent, success, error_msg, timestamp, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)
