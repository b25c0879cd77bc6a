package store

// Requêtes CQL des chemins chauds, regroupées ici pour garder les
// handlers lisibles. Schéma dans scripts/kartly_init.cql.
const (
	cqlReserveEmail  = `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`
	cqlUserIDByEmail = `SELECT user_id FROM users_by_email WHERE email = ?`
	cqlInsertUser    = `INSERT INTO users (user_id, email, password, name, provider, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	cqlGetUserByID = `SELECT email, password, name, provider, provider_id, created_at
		FROM users WHERE user_id = ?`

	cqlGetCart    = `SELECT doc, version FROM carts WHERE user_id = ?`
	cqlInsertCart = `INSERT INTO carts (user_id, doc, version, updated_at) VALUES (?, ?, 1, ?) IF NOT EXISTS`
	cqlUpdateCart = `UPDATE carts SET doc = ?, version = ?, updated_at = ? WHERE user_id = ? IF version = ?`

	cqlInsertOrder = `INSERT INTO orders (bucket, order_id, items, subtotal, tax, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	cqlListOrders = `SELECT order_id, items, subtotal, tax, total, created_at FROM orders WHERE bucket = ?`
)
