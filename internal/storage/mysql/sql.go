package mysql

// Column order matches bookingRow; named params bind by db tag.

const bookingColumns = `
  id, client_prenom, client_nom, client_email, client_phone,
  room_type, room_available, start_date, end_date, preferences`

const insertBookingSQL = `
INSERT INTO reservations
  (client_prenom, client_nom, client_email, client_phone,
   room_type, room_available, start_date, end_date, preferences)
VALUES
  (:client_prenom, :client_nom, :client_email, :client_phone,
   :room_type, :room_available, :start_date, :end_date, :preferences)
`

const updateBookingSQL = `
UPDATE reservations SET
  client_prenom  = :client_prenom,
  client_nom     = :client_nom,
  client_email   = :client_email,
  client_phone   = :client_phone,
  room_type      = :room_type,
  room_available = :room_available,
  start_date     = :start_date,
  end_date       = :end_date,
  preferences    = :preferences
WHERE id = :id
`

const deleteBookingSQL = `DELETE FROM reservations WHERE id = ?`

const listBookingsSQL = `SELECT` + bookingColumns + `
FROM reservations
ORDER BY id`

const getBookingSQL = `SELECT` + bookingColumns + `
FROM reservations
WHERE id = ?`

// existsBookingSQL tells "no such row" apart from "nothing changed" on update,
// since MySQL reports zero affected rows for an identical write.
const existsBookingSQL = `SELECT COUNT(*) FROM reservations WHERE id = ?`
