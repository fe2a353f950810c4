package repository

import (
	"context"
	"database/sql"

	"github.com/zumagrand/booking-api/internal/model"
)

// RoomRepo provides read access to the room catalog: room types and
// the physical rooms that belong to them. The catalog is reference
// data seeded at deploy time; this repository never writes to it.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomTypes returns all room types ordered by nightly rate ascending.
func (r *RoomRepo) RoomTypes(ctx context.Context) ([]model.RoomType, error) {
	const q = `SELECT id, code, name, nightly_rate, capacity, floor_area, created_at
               FROM room_types
               ORDER BY nightly_rate ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.RoomType, 0)
	for rows.Next() {
		var rt model.RoomType
		if err := rows.Scan(&rt.ID, &rt.Code, &rt.Name, &rt.NightlyRate, &rt.Capacity, &rt.FloorArea, &rt.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// RoomTypeByCode returns the room type with the given code. When the
// code is unknown, ErrRoomTypeNotFound is returned.
func (r *RoomRepo) RoomTypeByCode(ctx context.Context, code string) (*model.RoomType, error) {
	const q = `SELECT id, code, name, nightly_rate, capacity, floor_area, created_at
               FROM room_types
               WHERE code = ?`
	var rt model.RoomType
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&rt.ID, &rt.Code, &rt.Name, &rt.NightlyRate, &rt.Capacity, &rt.FloorArea, &rt.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRoomTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ActiveRoomsByType returns all active rooms of the given room type
// code, ordered by room id ascending. The ordering is what makes
// allocation deterministic: the allocator always claims the first
// free room of this list. An empty slice is returned when the type
// has no active rooms.
func (r *RoomRepo) ActiveRoomsByType(ctx context.Context, code string) ([]model.Room, error) {
	const q = `SELECT r.id, r.room_type_id, r.room_number, r.is_active, r.created_at
               FROM rooms r
               JOIN room_types rt ON rt.id = r.room_type_id
               WHERE rt.code = ? AND r.is_active = 1
               ORDER BY r.id ASC`
	rows, err := r.db.QueryContext(ctx, q, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.RoomTypeID, &rm.RoomNumber, &rm.IsActive, &rm.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}
