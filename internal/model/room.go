package model

import "time"

// RoomType is a catalog entry describing a class of room
// (single, double, suite).  Rates are stored in whole naira per
// night.  Catalog rows are seeded at deploy time and never
// mutated by the booking flow.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – stable slug used by the public API ("single").
//  Name        – human-facing display name.
//  NightlyRate – price per night in whole naira.
//  Capacity    – maximum number of guests.
//  FloorArea   – size of the room, e.g. "25 sqm".
type RoomType struct {
	ID          uint64    // room_types.id
	Code        string    // room_types.code
	Name        string    // room_types.name
	NightlyRate uint64    // room_types.nightly_rate
	Capacity    uint32    // room_types.capacity
	FloorArea   string    // room_types.floor_area
	CreatedAt   time.Time // room_types.created_at
}

// Room is one physical, numbered room belonging to a room type.
// The booking core only ever reads rooms; creating or retiring
// them is an operational task done directly against the database.
//
// Fields:
//  ID         – primary key identifier.
//  RoomTypeID – owning room type.
//  RoomNumber – human-facing room number.
//  IsActive   – whether the room can be allocated.
type Room struct {
	ID         uint64    // rooms.id
	RoomTypeID uint64    // rooms.room_type_id
	RoomNumber uint32    // rooms.room_number
	IsActive   bool      // rooms.is_active
	CreatedAt  time.Time // rooms.created_at
}
